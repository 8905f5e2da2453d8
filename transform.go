package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform places an unrotated, unscaled transform at position.
func NewTransform(position mgl32.Vec3) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix is translate * rotate * scale. A zero quaternion or zero scale is
// read as identity so zero-valued components stay usable.
func (t TransformComponent) Matrix() mgl32.Mat4 {
	rot := t.Rotation
	if rot.W == 0 && rot.V.Len() == 0 {
		rot = mgl32.QuatIdent()
	}
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Parent attaches an entity to another one's transform.
type Parent struct {
	Entity EntityId
}

// WorldTransform is the resolved parent chain, refreshed every frame.
type WorldTransform struct {
	Matrix mgl32.Mat4
}

const maxHierarchyDepth = 32

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func TransformHierarchySystem(cmd *Commands) {
	locals := make(map[EntityId]mgl32.Mat4)
	parents := make(map[EntityId]EntityId)

	MakeQuery2[TransformComponent, Parent](cmd).Map(func(eid EntityId, tr *TransformComponent, parent *Parent) bool {
		locals[eid] = tr.Matrix()
		if parent != nil {
			parents[eid] = parent.Entity
		}
		return true
	}, Parent{})

	MakeQuery2[TransformComponent, WorldTransform](cmd).Map(func(eid EntityId, _ *TransformComponent, world *WorldTransform) bool {
		world.Matrix = resolveWorld(eid, locals, parents)
		return true
	})
}

// resolveWorld walks up the parent chain. Missing parents end the chain and
// cycles are cut at maxHierarchyDepth.
func resolveWorld(eid EntityId, locals map[EntityId]mgl32.Mat4, parents map[EntityId]EntityId) mgl32.Mat4 {
	m := locals[eid]
	cur := eid
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		p, ok := parents[cur]
		if !ok {
			break
		}
		pm, ok := locals[p]
		if !ok {
			break
		}
		m = pm.Mul4(m)
		cur = p
	}
	return m
}

// worldMatrix prefers the resolved world transform when the entity has one.
func worldMatrix(tr *TransformComponent, world *WorldTransform) mgl32.Mat4 {
	if world != nil && world.Matrix != (mgl32.Mat4{}) {
		return world.Matrix
	}
	if tr == nil {
		return mgl32.Ident4()
	}
	return tr.Matrix()
}
