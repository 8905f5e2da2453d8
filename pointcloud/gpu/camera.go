package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pointcloud/pointcloud/render"
)

// mat4 view_proj + vec4 right + vec4 up
const cameraUniformSize = 64 + 16 + 16

func cameraUniformBytes(viewProj mgl32.Mat4, right, up mgl32.Vec3) []byte {
	out := make([]byte, cameraUniformSize)
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
		off += 4
	}
	// mgl32 matrices are column-major, same as WGSL.
	for _, v := range viewProj {
		put(v)
	}
	for _, v := range right {
		put(v)
	}
	put(0)
	for _, v := range up {
		put(v)
	}
	put(0)
	return out
}

// clip-space half spaces, each reported as "outside" for a given corner
var clipPlanes = [6]func(c mgl32.Vec4) bool{
	func(c mgl32.Vec4) bool { return c[0] < -c[3] },
	func(c mgl32.Vec4) bool { return c[0] > c[3] },
	func(c mgl32.Vec4) bool { return c[1] < -c[3] },
	func(c mgl32.Vec4) bool { return c[1] > c[3] },
	func(c mgl32.Vec4) bool { return c[2] < 0 }, // WebGPU depth range is [0, w]
	func(c mgl32.Vec4) bool { return c[2] > c[3] },
}

// boundsIntersectFrustum is a conservative clip-space test: the box is culled
// only when all 8 corners lie outside the same plane.
func boundsIntersectFrustum(viewProj mgl32.Mat4, b render.Bounds) bool {
	lo, hi := b.Min(), b.Max()
	var clip [8]mgl32.Vec4
	for i := range clip {
		corner := mgl32.Vec4{lo[0], lo[1], lo[2], 1}
		if i&1 != 0 {
			corner[0] = hi[0]
		}
		if i&2 != 0 {
			corner[1] = hi[1]
		}
		if i&4 != 0 {
			corner[2] = hi[2]
		}
		clip[i] = viewProj.Mul4x1(corner)
	}

	for _, outside := range clipPlanes {
		all := true
		for _, c := range clip {
			if !outside(c) {
				all = false
				break
			}
		}
		if all {
			return false
		}
	}
	return true
}
