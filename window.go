package gekko

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
	Resized      bool
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no OpenGL context, wgpu owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

// Glfw exposes the native window for surface creation.
func (s *WindowState) Glfw() *glfw.Window { return s.windowGlfw }

func (s *WindowState) Title() string { return s.windowTitle }

func (s *WindowState) AspectRatio() float32 {
	if s.WindowHeight == 0 {
		return 1
	}
	return float32(s.WindowWidth) / float32(s.WindowHeight)
}

func (s *WindowState) Destroy() {
	if s.windowGlfw == nil {
		return
	}
	s.windowGlfw.Destroy()
	s.windowGlfw = nil
	glfw.Terminate()
}

// PlatformWindowModule provides the shared WindowState and ends the app when
// the window is closed. Installing it twice reuses the existing window.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	ensureWindowResource(app, m.Width, m.Height, m.Title)

	app.UseSystem(
		System(windowEventsSystem).
			InStage(Prelude).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(windowDestroySystem).
				InStage(Finale).
				InState(OnExit(app.finalState)),
		)
	}
}

func windowEventsSystem(s *WindowState, cmd *Commands) {
	if s.windowGlfw == nil {
		return
	}
	glfw.PollEvents()

	w, h := s.windowGlfw.GetFramebufferSize()
	s.Resized = w != s.WindowWidth || h != s.WindowHeight
	s.WindowWidth, s.WindowHeight = w, h

	if s.windowGlfw.ShouldClose() {
		cmd.Quit()
	}
}

func windowDestroySystem(s *WindowState) {
	s.Destroy()
}
