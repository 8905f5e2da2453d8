package render

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bind point names the point-cloud material exposes.
const (
	PositionBufferName = "positionBuffer"
	PointColorName     = "_PointColor"
)

// RenderPointStride is the size in bytes of one packed RenderPoint.
const RenderPointStride = 16

// IndirectArgsWords is the number of 32-bit words in an indexed indirect draw.
const IndirectArgsWords = 5

// PointCloudLayer is the render layer point clouds are drawn on.
const PointCloudLayer = 9

// RenderPoint is the GPU-side layout of one point: xyz position, w point size.
type RenderPoint struct {
	X, Y, Z float32
	Size    float32
}

// IndirectArgs matches the indexed indirect draw layout:
// indexCount, instanceCount, firstIndex, baseVertex, firstInstance.
type IndirectArgs [IndirectArgsWords]uint32

func (a IndirectArgs) IndexCount() uint32    { return a[0] }
func (a IndirectArgs) InstanceCount() uint32 { return a[1] }

func (a IndirectArgs) Bytes() []byte {
	buf := make([]byte, IndirectArgsWords*4)
	for i, v := range a {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// Color is a linear RGBA color with components in 0..1.
type Color [4]float32

// ColorFromRGBA converts any image/color value (e.g. a colornames entry).
func ColorFromRGBA(c color.Color) Color {
	r, g, b, a := c.RGBA()
	return Color{
		float32(r) / 0xffff,
		float32(g) / 0xffff,
		float32(b) / 0xffff,
		float32(a) / 0xffff,
	}
}

func (c Color) Bytes() []byte {
	buf := make([]byte, 16)
	for i, v := range c {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Bounds is an axis aligned box given by center and full size.
type Bounds struct {
	Center mgl32.Vec3
	Size   mgl32.Vec3
}

func (b Bounds) Min() mgl32.Vec3 { return b.Center.Sub(b.Size.Mul(0.5)) }
func (b Bounds) Max() mgl32.Vec3 { return b.Center.Add(b.Size.Mul(0.5)) }

// PointCloudBounds is deliberately oversized so culling never has to be
// recomputed from the point data.
var PointCloudBounds = Bounds{
	Center: mgl32.Vec3{0, 0, 0},
	Size:   mgl32.Vec3{1000, 1000, 1000},
}

type ShadowCastingMode int

const (
	ShadowCastingOff ShadowCastingMode = iota
	ShadowCastingOn
	ShadowCastingTwoSided
	ShadowCastingShadowsOnly
)

// DrawOptions carries the per-draw flags a host may honour.
type DrawOptions struct {
	ShadowCasting  ShadowCastingMode
	ReceiveShadows bool
	Layer          int
}

func packRenderPoints(points []mgl32.Vec3, size float32) []byte {
	buf := make([]byte, len(points)*RenderPointStride)
	for i, p := range points {
		rp := RenderPoint{X: p.X(), Y: p.Y(), Z: p.Z(), Size: size}
		off := i * RenderPointStride
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(rp.X))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(rp.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(rp.Z))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(rp.Size))
	}
	return buf
}

// UnpackRenderPoints decodes a buffer written by the renderer.
func UnpackRenderPoints(data []byte) []RenderPoint {
	points := make([]RenderPoint, len(data)/RenderPointStride)
	for i := range points {
		off := i * RenderPointStride
		points[i] = RenderPoint{
			X:    math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
			Y:    math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
			Z:    math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:])),
			Size: math.Float32frombits(binary.LittleEndian.Uint32(data[off+12:])),
		}
	}
	return points
}

// UnpackIndirectArgs decodes the 20-byte argument block.
func UnpackIndirectArgs(data []byte) IndirectArgs {
	var args IndirectArgs
	for i := range args {
		if (i+1)*4 > len(data) {
			break
		}
		args[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return args
}
