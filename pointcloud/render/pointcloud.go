package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Instance count sentinels.
const (
	NotStarted = -1
	Empty      = 0
)

// Controller is the configuration capsule read on every position update.
type Controller struct {
	PointSize  float32
	PointColor Color
}

// PointCloud renders a set of positions with one indirect instanced draw per frame.
// It is driven from a single host thread and does no locking.
type PointCloud struct {
	graphics   Graphics
	mesh       Mesh
	material   Material
	controller *Controller

	instanceCount  int
	positionBuffer Buffer
	argsBuffer     Buffer
	args           IndirectArgs
}

// NewPointCloud borrows mesh, material and controller; they must outlive the renderer.
func NewPointCloud(graphics Graphics, mesh Mesh, material Material, controller *Controller) *PointCloud {
	return &PointCloud{
		graphics:      graphics,
		mesh:          mesh,
		material:      material,
		controller:    controller,
		instanceCount: NotStarted,
	}
}

// Begin allocates the indirect arguments buffer for a new render session.
func (pc *PointCloud) Begin() {
	if pc.argsBuffer != nil {
		pc.argsBuffer.Release()
	}
	pc.argsBuffer = pc.graphics.CreateBuffer("PointCloudArgs", 1, IndirectArgsWords*4, BufferIndirectArguments)
}

// UpdatePositions uploads points with the controller's current size and color.
// An empty slice only records the empty state; no buffer is touched.
func (pc *PointCloud) UpdatePositions(points []mgl32.Vec3) {
	pc.instanceCount = len(points)
	if pc.instanceCount == Empty {
		return
	}

	if pc.positionBuffer != nil {
		pc.positionBuffer.Release()
	}
	pc.positionBuffer = pc.graphics.CreateBuffer("PointCloudPositions", pc.instanceCount, RenderPointStride, BufferStructured)

	var size float32
	var color Color
	if pc.controller != nil {
		size = pc.controller.PointSize
		color = pc.controller.PointColor
	}
	pc.positionBuffer.Write(packRenderPoints(points, size))

	if pc.material != nil {
		pc.material.SetBuffer(PositionBufferName, pc.positionBuffer)
		pc.material.SetColor(PointColorName, color)
	}

	var numIndices uint32
	if pc.mesh != nil {
		numIndices = pc.mesh.IndexCount()
	}
	pc.args[0] = numIndices
	pc.args[1] = uint32(pc.instanceCount)

	// Updates before Begin keep the positions; the args land on the next session.
	if pc.argsBuffer != nil {
		pc.argsBuffer.Write(pc.args.Bytes())
	}
}

// RenderFrame issues the draw for this frame, if there is anything to draw.
func (pc *PointCloud) RenderFrame() {
	if pc.instanceCount <= 0 || pc.argsBuffer == nil {
		return
	}

	pc.graphics.DrawMeshInstancedIndirect(pc.mesh, pc.material, PointCloudBounds, pc.argsBuffer, DrawOptions{
		ShadowCasting:  ShadowCastingOff,
		ReceiveShadows: false,
		Layer:          PointCloudLayer,
	})
}

// End releases both buffers and returns to the not-started state.
func (pc *PointCloud) End() {
	if pc.positionBuffer != nil {
		pc.positionBuffer.Release()
	}
	pc.positionBuffer = nil

	if pc.argsBuffer != nil {
		pc.argsBuffer.Release()
	}
	pc.argsBuffer = nil

	pc.instanceCount = NotStarted
}

func (pc *PointCloud) InstanceCount() int { return pc.instanceCount }

// Args returns the last computed indirect arguments.
func (pc *PointCloud) Args() IndirectArgs { return pc.args }

// Started reports whether an arguments buffer is held.
func (pc *PointCloud) Started() bool { return pc.argsBuffer != nil }
