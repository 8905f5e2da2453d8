package gekko

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pointcloud/pointcloud/render"
	"github.com/gekko3d/pointcloud/pointcloud/sensor"
)

// PointCloudController is read by the renderer on every position update, so
// edits take effect on the next sweep.
type PointCloudController = render.Controller

// SensorComponent fires its ray fan every frame. A TransformComponent (or a
// resolved WorldTransform) on the same entity places the sensor: its origin
// overrides the position and its rotation turns the direction.
type SensorComponent struct {
	Name    string
	Sensor  sensor.Sensor
	Enabled bool
}

// RaycastTargetComponent makes the entity's mesh visible to sensors.
type RaycastTargetComponent struct {
	Name    string
	Mesh    AssetId
	Enabled bool
}

type sceneTarget struct {
	index int
	mesh  AssetId
}

// PointCloudState is the module's resource: the renderer, the sensor scene
// and the result of the last sweep.
type PointCloudState struct {
	Renderer *render.PointCloud // nil when running headless
	Scene    *sensor.Scene

	Hits      []mgl32.Vec3
	RayCount  int
	SweepErrs int

	targets map[EntityId]sceneTarget
}

// HitBounds returns the extents of the last sweep; ok is false with no hits.
func (s *PointCloudState) HitBounds() (lo, hi mgl32.Vec3, ok bool) {
	if len(s.Hits) == 0 {
		return lo, hi, false
	}
	inf := float32(math.Inf(1))
	lo = mgl32.Vec3{inf, inf, inf}
	hi = mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range s.Hits {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi, true
}

// PointCloudModule sweeps sensors against raycast targets and renders the hits.
// With a nil Graphics it runs headless and only records hits.
type PointCloudModule struct {
	Graphics render.Graphics
	Mesh     render.Mesh
	Material render.Material
}

func (m PointCloudModule) Install(app *App, cmd *Commands) {
	log := app.Logger()

	ctrl, ok := Resource[PointCloudController](app)
	if !ok {
		ctrl = &PointCloudController{PointSize: 0.05, PointColor: render.Color{1, 0.65, 0, 1}}
		cmd.AddResources(ctrl)
	}
	AssetServerModule{}.Install(app, cmd)

	state := &PointCloudState{
		Scene:   sensor.NewScene(),
		targets: make(map[EntityId]sceneTarget),
	}
	if m.Graphics != nil {
		state.Renderer = render.NewPointCloud(m.Graphics, m.Mesh, m.Material, ctrl)
	}
	cmd.AddResources(state)

	if state.Renderer != nil {
		if app.stateful {
			app.UseSystem(
				System(pointCloudBeginSystem).
					InStage(Prelude).
					InState(OnEnter(app.initialState)),
			)
			app.UseSystem(
				System(pointCloudEndSystem).
					InStage(Render).
					InState(OnExit(app.finalState)),
			)
		} else {
			state.Renderer.Begin()
			app.UseSystem(
				System(pointCloudQuitSystem).
					InStage(Finale).
					RunAlways(),
			)
		}
		app.UseSystem(
			System(pointCloudRenderSystem).
				InStage(Render).
				RunAlways(),
		)
	}

	app.UseSystem(
		System(func(cmd *Commands, state *PointCloudState, assets *AssetServer) {
			syncRaycastTargets(cmd, state, assets, log)
		}).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(func(cmd *Commands, state *PointCloudState) {
			sweepSensors(cmd, state, log)
		}).
			InStage(Update).
			RunAlways(),
	)

	log.Infof("point cloud installed (headless=%v)", state.Renderer == nil)
}

func pointCloudBeginSystem(state *PointCloudState) {
	state.Renderer.Begin()
}

func pointCloudEndSystem(state *PointCloudState) {
	state.Renderer.End()
}

// pointCloudQuitSystem releases the renderer's buffers on the last frame of a
// stateless app.
func pointCloudQuitSystem(cmd *Commands, state *PointCloudState) {
	if cmd.Quitting() {
		state.Renderer.End()
	}
}

func pointCloudRenderSystem(state *PointCloudState) {
	state.Renderer.RenderFrame()
}

// syncRaycastTargets mirrors target entities into the sensor scene. Entities
// that disappeared, or whose mesh changed, leave a disabled object behind.
func syncRaycastTargets(cmd *Commands, state *PointCloudState, assets *AssetServer, log Logger) {
	seen := make(map[EntityId]struct{}, len(state.targets))
	var moved []int
	var matrices []mgl32.Mat4
	var enabled, disabled []int

	MakeQuery3[RaycastTargetComponent, TransformComponent, WorldTransform](cmd).Map(
		func(eid EntityId, target *RaycastTargetComponent, tr *TransformComponent, world *WorldTransform) bool {
			seen[eid] = struct{}{}
			m := worldMatrix(tr, world)

			existing, ok := state.targets[eid]
			if ok && existing.mesh == target.Mesh {
				moved = append(moved, existing.index)
				matrices = append(matrices, m)
				if target.Enabled {
					enabled = append(enabled, existing.index)
				} else {
					disabled = append(disabled, existing.index)
				}
				return true
			}
			if ok {
				disabled = append(disabled, existing.index)
				delete(state.targets, eid)
			}

			mesh, found := assets.Mesh(target.Mesh)
			if !found {
				log.Warnf("raycast target %v (%s): mesh %s not loaded", eid, target.Name, target.Mesh)
				return true
			}
			idx, err := state.Scene.AddObject(mesh.Positions, mesh.Indices, m, target.Enabled)
			if err != nil {
				log.Errorf("raycast target %v (%s): %v", eid, target.Name, err)
				return true
			}
			state.targets[eid] = sceneTarget{index: idx, mesh: target.Mesh}
			log.Debugf("raycast target %v (%s) added as scene object %d", eid, target.Name, idx)
			return true
		},
		TransformComponent{}, WorldTransform{},
	)

	for eid, t := range state.targets {
		if _, ok := seen[eid]; !ok {
			disabled = append(disabled, t.index)
			delete(state.targets, eid)
		}
	}

	if err := state.Scene.SetTransforms(moved, matrices); err != nil {
		log.Errorf("sync raycast targets: %v", err)
	}
	state.Scene.SetEnabled(enabled, true)
	state.Scene.SetEnabled(disabled, false)
}

// placeSensor moves a sensor to its entity's world transform: the origin is
// the transformed position and the direction is rotated with it. Without any
// transform the sensor keeps its own position and direction.
func placeSensor(s sensor.Sensor, tr *TransformComponent, world *WorldTransform) sensor.Sensor {
	if tr == nil && world == nil {
		return s
	}
	m := worldMatrix(tr, world)
	s.Position = m.Col(3).Vec3()
	if dir := m.Mat3().Mul3x1(s.Direction); dir.Len() > 0 {
		s.Direction = dir.Normalize()
	}
	return s
}

func sweepSensors(cmd *Commands, state *PointCloudState, log Logger) {
	var sensors []sensor.Sensor
	MakeQuery3[SensorComponent, TransformComponent, WorldTransform](cmd).Map(
		func(eid EntityId, sc *SensorComponent, tr *TransformComponent, world *WorldTransform) bool {
			if !sc.Enabled {
				return true
			}
			sensors = append(sensors, placeSensor(sc.Sensor, tr, world))
			return true
		},
		TransformComponent{}, WorldTransform{},
	)

	rays, err := sensor.GenerateRays(sensors...)
	if err != nil {
		state.SweepErrs++
		log.Errorf("generate rays: %v", err)
		return
	}

	hits, err := state.Scene.Fire(context.Background(), rays)
	if err != nil {
		state.SweepErrs++
		log.Errorf("fire %d rays: %v", len(rays), err)
		return
	}

	state.RayCount = len(rays)
	state.Hits = hits
	if state.Renderer != nil {
		state.Renderer.UpdatePositions(hits)
	}
}
