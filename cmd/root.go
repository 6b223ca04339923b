package cmd

import (
	"os"

	"github.com/jobbers/jobbers/internal/config"
	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	quietMode bool
)

var rootCmd = &cobra.Command{
	Use:           "jobbers",
	Short:         "jobbers: build SLURM batch scripts for Abaqus and other HPC jobs.",
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Flags first so that config loading can already log
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
		}
		if quietMode {
			utils.QuietMode = true
			config.Global.Quiet = true
		}

		if err := config.InitViper(); err != nil {
			utils.PrintWarning("%v", err)
		}

		if debugMode {
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("jobbers Version: %s", utils.StyleInfo(config.VERSION))
			if config.Global.ConfigFile != "" {
				utils.PrintDebug("Config file: %s", utils.StylePath(config.Global.ConfigFile))
			} else {
				utils.PrintDebug("Config file: none (packaged defaults)")
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced.
		utils.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Only print warnings and errors")
}
