package main

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	gekko "github.com/gekko3d/pointcloud"
)

var (
	dumpPath string
	frames   int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Fire the sensors once without a window",
	Long:  `Runs the scene headless and prints the number of hits and their bounds.`,
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&dumpPath, "dump", "", "Write hit points to this YAML file")
	sweepCmd.Flags().IntVar(&frames, "frames", 1, "Number of frames to step")
	rootCmd.AddCommand(sweepCmd)
}

type sweepReport struct {
	Rays   int          `yaml:"rays"`
	Hits   int          `yaml:"hits"`
	Min    *mgl32.Vec3  `yaml:"min,omitempty"`
	Max    *mgl32.Vec3  `yaml:"max,omitempty"`
	Points []mgl32.Vec3 `yaml:"points,omitempty"`
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", frames)
	}

	app := gekko.NewAppBuilder().
		UseModule(
			gekko.LoggingModule{Prefix: "sweep", Debug: debug || cfg.Debug, Out: cmd.ErrOrStderr(), Err: cmd.ErrOrStderr()},
			gekko.TimeModule{},
			gekko.HierarchyModule{},
			gekko.LifecycleModule{},
			gekko.SceneModule{Config: cfg},
			gekko.PointCloudModule{},
		).
		Build()

	for i := 0; i < frames; i++ {
		app.Step()
	}

	state, _ := gekko.Resource[gekko.PointCloudState](app)
	if state.SweepErrs > 0 {
		return fmt.Errorf("%d sweep errors, see log", state.SweepErrs)
	}

	report := sweepReport{Rays: state.RayCount, Hits: len(state.Hits)}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rays: %d\nhits: %d\n", report.Rays, report.Hits)
	if lo, hi, ok := state.HitBounds(); ok {
		report.Min, report.Max = &lo, &hi
		fmt.Fprintf(out, "bounds: [%.3f %.3f %.3f] - [%.3f %.3f %.3f]\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}

	if dumpPath == "" {
		return nil
	}
	report.Points = state.Hits
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode hits: %w", err)
	}
	if err := os.WriteFile(dumpPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dumpPath, err)
	}
	return nil
}
