package main

import (
	"github.com/spf13/cobra"

	gekko "github.com/gekko3d/pointcloud"
)

const (
	stateRunning gekko.State = iota
	stateDone
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the viewer window",
	Long:  `Runs the sensors every frame and renders their hits until Escape or the window is closed.`,
	RunE:  runViewer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := gekko.NewAppBuilder().
		UseStates(stateRunning, stateDone).
		UseModule(
			gekko.LoggingModule{Prefix: "pcviewer", Debug: debug || cfg.Debug},
			gekko.TimeModule{},
			gekko.HierarchyModule{},
			gekko.LifecycleModule{},
			gekko.SceneModule{Config: cfg},
			gekko.InputModule{},
			gekko.FlyingCameraModule{},
		).
		Build()

	app.UseRenderer(gekko.RendererPointCloud, gekko.PointCloudRendererModule{
		WindowWidth:  cfg.Window.Width,
		WindowHeight: cfg.Window.Height,
		WindowTitle:  cfg.Window.Title,
		ClearColor:   cfg.PointCloud.ClearColor.Render(),
	})

	app.Run()
	return nil
}
