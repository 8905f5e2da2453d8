package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/pointcloud/pointcloud/render"
)

// Buffer is a render.Buffer backed by a wgpu buffer.
type Buffer struct {
	buf   *wgpu.Buffer
	queue *wgpu.Queue
	label string
	size  uint64
	kind  render.BufferKind
}

func (b *Buffer) Write(data []byte) {
	if b.buf == nil || len(data) == 0 {
		return
	}
	if err := b.queue.WriteBuffer(b.buf, 0, data); err != nil {
		panic(fmt.Errorf("write %d bytes to %s: %w", len(data), b.label, err))
	}
}

func (b *Buffer) Release() {
	if b.buf == nil {
		return
	}
	b.buf.Release()
	b.buf = nil
}

