package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pointcloud/pointcloud/render"
)

// Backend implements render.Graphics on WebGPU. Draws are queued during the
// frame and encoded into a single render pass by SubmitFrame.
type Backend struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	CameraBuf *wgpu.Buffer
	viewProj  mgl32.Mat4

	queued []drawCommand
}

type drawCommand struct {
	mesh     *Mesh
	material *Material
	args     *Buffer
	opts     render.DrawOptions
}

// NewBackend wraps the GLFW window into a surface and acquires a device for it.
func NewBackend(window *glfw.Window) (*Backend, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "PointCloud Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	width, height := window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, config)

	cameraBuf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PointCloudCamera",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create camera buffer: %w", err)
	}

	return &Backend{
		Instance:  instance,
		Surface:   surface,
		Adapter:   adapter,
		Device:    device,
		Queue:     device.GetQueue(),
		Config:    config,
		CameraBuf: cameraBuf,
		viewProj:  mgl32.Ident4(),
	}, nil
}

func (b *Backend) Format() wgpu.TextureFormat { return b.Config.Format }

func (b *Backend) AspectRatio() float32 {
	if b.Config.Height == 0 {
		return 1
	}
	return float32(b.Config.Width) / float32(b.Config.Height)
}

// Resize reconfigures the swapchain; zero sizes (minimized window) are ignored.
func (b *Backend) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if uint32(width) == b.Config.Width && uint32(height) == b.Config.Height {
		return
	}
	b.Config.Width = uint32(width)
	b.Config.Height = uint32(height)
	b.Surface.Configure(b.Adapter, b.Device, b.Config)
}

// SetCamera uploads the camera used by every point-cloud material this frame.
func (b *Backend) SetCamera(viewProj mgl32.Mat4, right, up mgl32.Vec3) error {
	b.viewProj = viewProj
	return b.Queue.WriteBuffer(b.CameraBuf, 0, cameraUniformBytes(viewProj, right, up))
}

func (b *Backend) CreateBuffer(label string, count int, stride int, kind render.BufferKind) render.Buffer {
	usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	if kind == render.BufferIndirectArguments {
		usage = wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst
	}

	size := uint64(count) * uint64(stride)
	buf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		panic(err)
	}
	return &Buffer{buf: buf, queue: b.Queue, label: label, size: size, kind: kind}
}

func (b *Backend) DrawMeshInstancedIndirect(mesh render.Mesh, material render.Material, bounds render.Bounds, args render.Buffer, opts render.DrawOptions) {
	m, ok := mesh.(*Mesh)
	if !ok || m == nil {
		return
	}
	mat, ok := material.(*Material)
	if !ok || mat == nil {
		return
	}
	buf, ok := args.(*Buffer)
	if !ok || buf == nil || buf.kind != render.BufferIndirectArguments {
		return
	}
	if !boundsIntersectFrustum(b.viewProj, bounds) {
		return
	}
	b.queued = append(b.queued, drawCommand{mesh: m, material: mat, args: buf, opts: opts})
}

// QueuedDraws returns the number of draws waiting for SubmitFrame.
func (b *Backend) QueuedDraws() int { return len(b.queued) }

// SubmitFrame encodes all queued draws into one pass over the current
// swapchain image and presents it. The queue is cleared even on error.
func (b *Backend) SubmitFrame(clear render.Color) error {
	defer func() { b.queued = b.queued[:0] }()

	nextTexture, err := b.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}
	defer view.Release()

	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	type boundDraw struct {
		drawCommand
		cameraGroup *wgpu.BindGroup
		pointGroup  *wgpu.BindGroup
	}
	draws := make([]boundDraw, 0, len(b.queued))
	for _, draw := range b.queued {
		cameraGroup, pointGroup, err := draw.material.bindGroups()
		if err != nil {
			return err
		}
		draws = append(draws, boundDraw{drawCommand: draw, cameraGroup: cameraGroup, pointGroup: pointGroup})
	}

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(clear[0]),
					G: float64(clear[1]),
					B: float64(clear[2]),
					A: float64(clear[3]),
				},
			},
		},
	})
	defer renderPass.Release()

	for _, draw := range draws {
		renderPass.SetPipeline(draw.material.Pipeline)
		renderPass.SetBindGroup(0, draw.cameraGroup, nil)
		renderPass.SetBindGroup(1, draw.pointGroup, nil)
		renderPass.SetVertexBuffer(0, draw.mesh.VertexBuffer, 0, wgpu.WholeSize)
		renderPass.SetIndexBuffer(draw.mesh.IndexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		renderPass.DrawIndexedIndirect(draw.args.buf, 0)
	}

	if err := renderPass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmdBuffer.Release()

	b.Queue.Submit(cmdBuffer)
	b.Surface.Present()
	return nil
}

func (b *Backend) Release() {
	b.queued = nil
	if b.CameraBuf != nil {
		b.CameraBuf.Release()
		b.CameraBuf = nil
	}
	if b.Queue != nil {
		b.Queue.Release()
	}
	if b.Device != nil {
		b.Device.Release()
	}
	if b.Adapter != nil {
		b.Adapter.Release()
	}
	if b.Surface != nil {
		b.Surface.Release()
	}
	if b.Instance != nil {
		b.Instance.Release()
	}
}
