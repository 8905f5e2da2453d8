package gekko

import (
	"fmt"
)

// RendererName identifies a concrete renderer module.
type RendererName string

const (
	RendererPointCloud RendererName = "pointcloud"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer can be installed at a time.
type RendererTag struct {
	Name RendererName
}

func ensureSingleRenderer(app *App, name RendererName) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}

// ensureWindowResource creates the shared WindowState unless one exists.
func ensureWindowResource(app *App, width, height int, title string) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Gekko"
	}
	app.addResources(createWindowState(width, height, title))
	app.Logger().Infof("Created shared window (%dx%d) '%s'", width, height, title)
}

// UseRenderer installs exactly one renderer module.
func (app *App) UseRenderer(name RendererName, mod Module) *App {
	ensureSingleRenderer(app, name)
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}
