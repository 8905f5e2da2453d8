package render

// BufferKind selects how the host allocates a GPU buffer.
type BufferKind int

const (
	// BufferStructured is a read-only storage buffer of fixed-stride elements.
	BufferStructured BufferKind = iota
	// BufferIndirectArguments holds indirect draw parameters.
	BufferIndirectArguments
)

func (k BufferKind) String() string {
	switch k {
	case BufferStructured:
		return "structured"
	case BufferIndirectArguments:
		return "indirect-arguments"
	default:
		return "unknown"
	}
}

// Buffer is a GPU buffer exclusively owned by whoever created it.
type Buffer interface {
	Write(data []byte)
	Release()
}

// Mesh is a borrowed, host-owned mesh handle.
type Mesh interface {
	IndexCount() uint32
}

// Material is a borrowed, host-owned material handle with named bind points.
type Material interface {
	SetBuffer(name string, buf Buffer)
	SetColor(name string, c Color)
}

// Graphics is the slice of the host graphics API the point cloud needs.
// Allocation failures are fatal and are expected to panic inside the host.
type Graphics interface {
	CreateBuffer(label string, count int, stride int, kind BufferKind) Buffer
	DrawMeshInstancedIndirect(mesh Mesh, material Material, bounds Bounds, args Buffer, opts DrawOptions)
}
