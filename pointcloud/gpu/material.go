package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pointcloud/pointcloud/render"
)

var materialBindings = map[string]uint32{
	render.PositionBufferName: 0,
	render.PointColorName:     1,
}

// Material owns the point-cloud pipeline and the per-material bind group.
// Buffers set by name are bound lazily on the next SubmitFrame.
type Material struct {
	Pipeline *wgpu.RenderPipeline

	device    *wgpu.Device
	queue     *wgpu.Queue
	cameraBuf *wgpu.Buffer
	colorBuf  *wgpu.Buffer

	positions *Buffer
	dirty     bool

	cameraGroup *wgpu.BindGroup
	pointGroup  *wgpu.BindGroup
}

func (b *Backend) NewMaterial(shaderCode string) (*Material, error) {
	shaderModule, err := b.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PointCloudShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderCode},
	})
	if err != nil {
		return nil, fmt.Errorf("point cloud shader: %w", err)
	}
	defer shaderModule.Release()

	cameraBgl, err := b.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "PointCloudCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: cameraUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pointBgl, err := b.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "PointCloudPointsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 16,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := b.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{cameraBgl, pointBgl},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := b.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "PointCloudPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(mgl32.Vec3{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         0,
							ShaderLocation: 0,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.Format(),
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("point cloud pipeline: %w", err)
	}

	colorBuf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PointCloudColor",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		pipeline.Release()
		return nil, err
	}

	return &Material{
		Pipeline:  pipeline,
		device:    b.Device,
		queue:     b.Queue,
		cameraBuf: b.CameraBuf,
		colorBuf:  colorBuf,
		dirty:     true,
	}, nil
}

func (m *Material) SetBuffer(name string, buf render.Buffer) {
	if name != render.PositionBufferName {
		return
	}
	gb, ok := buf.(*Buffer)
	if !ok {
		return
	}
	if gb != m.positions {
		m.positions = gb
		m.dirty = true
	}
}

func (m *Material) SetColor(name string, c render.Color) {
	if name != render.PointColorName {
		return
	}
	if err := m.queue.WriteBuffer(m.colorBuf, 0, c.Bytes()); err != nil {
		panic(err)
	}
}

// bindGroups returns the camera and point groups, rebuilding the point group
// when the position buffer changed since the last frame.
func (m *Material) bindGroups() (*wgpu.BindGroup, *wgpu.BindGroup, error) {
	if m.positions == nil || m.positions.buf == nil {
		return nil, nil, fmt.Errorf("material has no %s bound", render.PositionBufferName)
	}

	if m.cameraGroup == nil {
		group, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "PointCloudCameraBG",
			Layout: m.Pipeline.GetBindGroupLayout(0),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: m.cameraBuf, Size: cameraUniformSize},
			},
		})
		if err != nil {
			return nil, nil, err
		}
		m.cameraGroup = group
	}

	if m.dirty || m.pointGroup == nil {
		group, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "PointCloudPointsBG",
			Layout: m.Pipeline.GetBindGroupLayout(1),
			Entries: []wgpu.BindGroupEntry{
				{Binding: materialBindings[render.PositionBufferName], Buffer: m.positions.buf, Size: m.positions.size},
				{Binding: materialBindings[render.PointColorName], Buffer: m.colorBuf, Size: 16},
			},
		})
		if err != nil {
			return nil, nil, err
		}
		if m.pointGroup != nil {
			m.pointGroup.Release()
		}
		m.pointGroup = group
		m.dirty = false
	}

	return m.cameraGroup, m.pointGroup, nil
}

func (m *Material) Release() {
	if m.pointGroup != nil {
		m.pointGroup.Release()
		m.pointGroup = nil
	}
	if m.cameraGroup != nil {
		m.cameraGroup.Release()
		m.cameraGroup = nil
	}
	if m.colorBuf != nil {
		m.colorBuf.Release()
		m.colorBuf = nil
	}
	if m.Pipeline != nil {
		m.Pipeline.Release()
		m.Pipeline = nil
	}
}
