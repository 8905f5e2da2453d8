package gekko

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyP
	KeyR
	KeySpace
	KeyEscape
	KeyTab
	KeyShift
	KeyControl
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	MouseButtonLeft
	MouseButtonRight
	keyCount
)

type InputModule struct{}

type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool
}

// press records the raw state of one key for this frame.
func (input *Input) press(key Key, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// moveCursor updates the mouse; deltas are only reported while captured.
func (input *Input) moveCursor(x, y float64) {
	if input.MouseCaptured {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	} else {
		input.MouseDeltaX = 0
		input.MouseDeltaY = 0
	}
	input.MouseX = x
	input.MouseY = y
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(escapeSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func inputSystem(s *WindowState, input *Input) {
	win := s.windowGlfw
	if win == nil {
		return
	}

	for key, glfwKey := range keyToGlfw {
		input.press(key, win.GetKey(glfwKey) == glfw.Press)
	}
	input.press(MouseButtonLeft, win.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press)
	input.press(MouseButtonRight, win.GetMouseButton(glfw.MouseButtonRight) == glfw.Press)

	input.moveCursor(win.GetCursorPos())

	if input.MouseCaptured {
		win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

func escapeSystem(input *Input, cmd *Commands) {
	if input.JustPressed[KeyEscape] {
		cmd.Quit()
	}
}

var keyToGlfw = map[Key]glfw.Key{
	KeyW:       glfw.KeyW,
	KeyA:       glfw.KeyA,
	KeyS:       glfw.KeyS,
	KeyD:       glfw.KeyD,
	KeyQ:       glfw.KeyQ,
	KeyE:       glfw.KeyE,
	KeyP:       glfw.KeyP,
	KeyR:       glfw.KeyR,
	KeySpace:   glfw.KeySpace,
	KeyEscape:  glfw.KeyEscape,
	KeyTab:     glfw.KeyTab,
	KeyShift:   glfw.KeyLeftShift,
	KeyControl: glfw.KeyLeftControl,
	KeyUp:      glfw.KeyUp,
	KeyDown:    glfw.KeyDown,
	KeyLeft:    glfw.KeyLeft,
	KeyRight:   glfw.KeyRight,
}
