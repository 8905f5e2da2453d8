package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh holds the vertex and index buffers of one instanced shape.
type Mesh struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	indexCount   uint32
}

// NewMesh uploads positions and 16-bit indices. The index data is padded to a
// 4-byte boundary; the padding index is never drawn.
func (b *Backend) NewMesh(label string, vertices []mgl32.Vec3, indices []uint16) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh %q: no geometry", label)
	}

	vertexBuf, err := b.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Vertices",
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("mesh %q vertices: %w", label, err)
	}

	padded := indices
	if len(padded)%2 != 0 {
		padded = append(append([]uint16(nil), indices...), 0)
	}
	indexBuf, err := b.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Indices",
		Contents: wgpu.ToBytes(padded),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertexBuf.Release()
		return nil, fmt.Errorf("mesh %q indices: %w", label, err)
	}

	return &Mesh{
		VertexBuffer: vertexBuf,
		IndexBuffer:  indexBuf,
		indexCount:   uint32(len(indices)),
	}, nil
}

func (m *Mesh) IndexCount() uint32 { return m.indexCount }

func (m *Mesh) Release() {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Release()
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Release()
		m.IndexBuffer = nil
	}
}
