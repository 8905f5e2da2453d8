// Package rendertest provides an in-memory render.Graphics for tests.
package rendertest

import (
	"fmt"

	"github.com/gekko3d/pointcloud/pointcloud/render"
)

type Buffer struct {
	Label    string
	Count    int
	Stride   int
	Kind     render.BufferKind
	Data     []byte
	Writes   int
	Released bool
}

func (b *Buffer) Write(data []byte) {
	if b.Released {
		panic(fmt.Sprintf("write to released buffer %q", b.Label))
	}
	if len(data) > b.Count*b.Stride {
		panic(fmt.Sprintf("write of %d bytes overflows buffer %q (%d bytes)", len(data), b.Label, b.Count*b.Stride))
	}
	b.Data = append(b.Data[:0], data...)
	b.Writes++
}

func (b *Buffer) Release() {
	if b.Released {
		panic(fmt.Sprintf("double release of buffer %q", b.Label))
	}
	b.Released = true
}

type Mesh struct {
	Indices uint32
}

func (m *Mesh) IndexCount() uint32 { return m.Indices }

type Material struct {
	Buffers map[string]render.Buffer
	Colors  map[string]render.Color
}

func NewMaterial() *Material {
	return &Material{
		Buffers: make(map[string]render.Buffer),
		Colors:  make(map[string]render.Color),
	}
}

func (m *Material) SetBuffer(name string, buf render.Buffer) { m.Buffers[name] = buf }
func (m *Material) SetColor(name string, c render.Color)     { m.Colors[name] = c }

type Draw struct {
	Mesh     render.Mesh
	Material render.Material
	Bounds   render.Bounds
	Args     *Buffer
	Options  render.DrawOptions
}

// Graphics records every allocation and draw.
type Graphics struct {
	Buffers []*Buffer
	Draws   []Draw
}

func (g *Graphics) CreateBuffer(label string, count int, stride int, kind render.BufferKind) render.Buffer {
	if count <= 0 || stride <= 0 {
		panic(fmt.Sprintf("invalid buffer size %dx%d for %q", count, stride, label))
	}
	b := &Buffer{Label: label, Count: count, Stride: stride, Kind: kind}
	g.Buffers = append(g.Buffers, b)
	return b
}

func (g *Graphics) DrawMeshInstancedIndirect(mesh render.Mesh, material render.Material, bounds render.Bounds, args render.Buffer, opts render.DrawOptions) {
	g.Draws = append(g.Draws, Draw{
		Mesh:     mesh,
		Material: material,
		Bounds:   bounds,
		Args:     args.(*Buffer),
		Options:  opts,
	})
}

// Live returns buffers that have not been released, optionally filtered by kind.
func (g *Graphics) Live(kind render.BufferKind) []*Buffer {
	var res []*Buffer
	for _, b := range g.Buffers {
		if !b.Released && b.Kind == kind {
			res = append(res, b)
		}
	}
	return res
}

// Reset forgets recorded draws, typically between frames.
func (g *Graphics) Reset() { g.Draws = g.Draws[:0] }
