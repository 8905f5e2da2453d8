package gekko

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Fov      float32 // degrees
	Near     float32
	Far      float32

	Yaw   float32
	Pitch float32
}

// NewCamera points a camera from position at target with sensible lens
// defaults; yaw and pitch are derived so flying starts where it looks.
func NewCamera(position, target mgl32.Vec3) CameraComponent {
	cam := CameraComponent{
		Position: position,
		LookAt:   target,
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      60,
		Near:     0.1,
		Far:      1000,
	}
	if dir := target.Sub(position); dir.Len() > 0 {
		dir = dir.Normalize()
		cam.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(dir.X()), float64(-dir.Z()))))
		cam.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(dir.Y()))))
	}
	return cam
}

// glToWebGPU remaps clip z from [-w, w] to [0, w].
var glToWebGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func (c CameraComponent) View() mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.LookAt, up)
}

func (c CameraComponent) Projection(aspect float32) mgl32.Mat4 {
	fov, near, far := c.Fov, c.Near, c.Far
	if fov <= 0 {
		fov = 60
	}
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = near + 1000
	}
	return glToWebGPU.Mul4(mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far))
}

func (c CameraComponent) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

// Basis returns the camera's world-space right and up vectors, used to face
// point billboards towards the viewer.
func (c CameraComponent) Basis() (right, up mgl32.Vec3) {
	v := c.View()
	right = mgl32.Vec3{v.At(0, 0), v.At(0, 1), v.At(0, 2)}
	up = mgl32.Vec3{v.At(1, 0), v.At(1, 1), v.At(1, 2)}
	return right, up
}

type FlyingCameraModule struct{}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(FlyingCameraInputSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(FlyingCameraControlSystem).
			InStage(Update).
			RunAlways(),
	)
}

type FlyingCameraComponent struct {
	Speed       float32
	Sensitivity float32
	Move        mgl32.Vec3
	Look        mgl32.Vec2
}

func FlyingCameraInputSystem(input *Input, cmd *Commands) {
	if input.JustPressed[KeyTab] {
		input.MouseCaptured = !input.MouseCaptured
	}

	axis := func(pos, neg Key) float32 {
		var v float32
		if input.Pressed[pos] {
			v++
		}
		if input.Pressed[neg] {
			v--
		}
		return v
	}

	MakeQuery1[FlyingCameraComponent](cmd).Map(func(eid EntityId, fly *FlyingCameraComponent) bool {
		fly.Move = mgl32.Vec3{axis(KeyD, KeyA), axis(KeySpace, KeyControl), axis(KeyW, KeyS)}
		fly.Look = mgl32.Vec2{float32(input.MouseDeltaX), float32(input.MouseDeltaY)}
		return true
	})
}

func FlyingCameraControlSystem(cmd *Commands, time *Time) {
	dt := time.Seconds()
	if dt <= 0 {
		return
	}

	MakeQuery2[CameraComponent, FlyingCameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent, fly *FlyingCameraComponent) bool {
		flyCamera(cam, fly, dt)
		return true
	})
}

func flyCamera(cam *CameraComponent, fly *FlyingCameraComponent, dt float32) {
	if fly.Sensitivity == 0 {
		fly.Sensitivity = 0.1
	}
	if fly.Speed == 0 {
		fly.Speed = 5.0
	}

	cam.Yaw += fly.Look[0] * fly.Sensitivity
	cam.Pitch = mgl32.Clamp(cam.Pitch-fly.Look[1]*fly.Sensitivity, -89, 89)

	yawRad := float64(mgl32.DegToRad(cam.Yaw))
	pitchRad := float64(mgl32.DegToRad(cam.Pitch))

	forward := mgl32.Vec3{
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(-math.Cos(yawRad) * math.Cos(pitchRad)),
	}.Normalize()
	worldUp := mgl32.Vec3{0, 1, 0}
	right := forward.Cross(worldUp).Normalize()

	move := right.Mul(fly.Move[0]).Add(worldUp.Mul(fly.Move[1])).Add(forward.Mul(fly.Move[2]))
	if move.Len() > 0 {
		cam.Position = cam.Position.Add(move.Normalize().Mul(fly.Speed * dt))
	}

	cam.LookAt = cam.Position.Add(forward)
	cam.Up = worldUp
}
