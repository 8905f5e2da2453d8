package main

import (
	"github.com/spf13/cobra"

	gekko "github.com/gekko3d/pointcloud"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "pcviewer",
	Short: "Sensor point-cloud viewer",
	Long: `pcviewer fires sensor ray fans at a scene described in YAML and draws
every hit as an instanced point billboard.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Scene config (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func loadConfig() (gekko.ViewerConfig, error) {
	if configPath == "" {
		return gekko.ParseConfig(nil)
	}
	return gekko.LoadConfig(configPath)
}
