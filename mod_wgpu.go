package gekko

import (
	"fmt"

	"github.com/gekko3d/pointcloud/pointcloud/gpu"
	"github.com/gekko3d/pointcloud/pointcloud/render"
	"github.com/gekko3d/pointcloud/pointcloud/shaders"
)

// PointCloudRendererModule opens the shared window, brings up the WebGPU
// backend and installs a PointCloudModule drawing through it.
type PointCloudRendererModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
	ClearColor   render.Color
}

// gpuFrame holds what the per-frame systems need besides the backend.
type gpuFrame struct {
	clear    render.Color
	mesh     *gpu.Mesh
	material *gpu.Material
}

func (m PointCloudRendererModule) Install(app *App, cmd *Commands) {
	log := app.Logger()
	ensureSingleRenderer(app, RendererPointCloud)
	PlatformWindowModule{Width: m.WindowWidth, Height: m.WindowHeight, Title: m.WindowTitle}.Install(app, cmd)
	AssetServerModule{}.Install(app, cmd)

	ws, _ := Resource[WindowState](app)
	assets, _ := Resource[AssetServer](app)

	backend, err := gpu.NewBackend(ws.Glfw())
	if err != nil {
		panic(fmt.Errorf("point cloud renderer: %w", err))
	}

	quad, _ := assets.Mesh(assets.CreateQuadMesh())
	mesh, err := backend.NewMesh(quad.Name, quad.Positions, quad.Indices)
	if err != nil {
		panic(fmt.Errorf("point cloud renderer: %w", err))
	}

	shader, _ := assets.Shader(assets.LoadShader("pointcloud.wgsl", shaders.PointCloudWGSL))
	material, err := backend.NewMaterial(shader.Source)
	if err != nil {
		panic(fmt.Errorf("point cloud renderer: %w", err))
	}

	cmd.AddResources(backend, &gpuFrame{clear: m.ClearColor, mesh: mesh, material: material})
	log.Infof("WebGPU backend ready for %q (%dx%d, %v)", ws.Title(), backend.Config.Width, backend.Config.Height, backend.Format())

	PointCloudModule{Graphics: backend, Mesh: mesh, Material: material}.Install(app, cmd)

	app.UseSystem(
		System(uploadCameraSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(func(backend *gpu.Backend, frame *gpuFrame) {
			log.Debugf("submitting %d point cloud draws", backend.QueuedDraws())
			if err := backend.SubmitFrame(frame.clear); err != nil {
				log.Warnf("frame skipped: %v", err)
			}
		}).
			InStage(PostRender).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(releaseBackendSystem).
				InStage(PostRender).
				InState(OnExit(app.finalState)),
		)
	} else {
		// after the point cloud released its buffers in Finale
		app.UseSystem(
			System(func(cmd *Commands, backend *gpu.Backend, frame *gpuFrame) {
				if cmd.Quitting() {
					releaseBackendSystem(backend, frame)
				}
			}).
				InStage(Finale).
				RunAlways(),
		)
	}
}

// uploadCameraSystem resizes the swapchain to the window and uploads the
// first camera found.
func uploadCameraSystem(cmd *Commands, ws *WindowState, backend *gpu.Backend) {
	if ws.Resized {
		backend.Resize(ws.WindowWidth, ws.WindowHeight)
	}

	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		right, up := cam.Basis()
		if err := backend.SetCamera(cam.ViewProjection(backend.AspectRatio()), right, up); err != nil {
			panic(err)
		}
		return false
	})
}

func releaseBackendSystem(backend *gpu.Backend, frame *gpuFrame) {
	frame.material.Release()
	frame.mesh.Release()
	backend.Release()
}
