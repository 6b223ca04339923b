package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jobbers/jobbers/internal/config"
	"github.com/jobbers/jobbers/internal/render"
	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	showPath  bool
	initForce bool
)

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		// First arg: complete config keys
		return config.Keys, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		// Second arg: complete values based on the key
		return configValueCompletion(args[0]), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configValueCompletion returns suggested values for a config key
func configValueCompletion(key string) []string {
	switch key {
	case config.KeyTasksPerNode:
		return []string{"32", "36", "48", "64", "128"}
	case config.KeyMaxCpus:
		return []string{"576", "1152", "2304"}
	case config.KeyMaxTimeLimit:
		return []string{"1440", "2880", "7-00:00:00"}
	case config.KeyWorkernodeMem:
		return []string{"180", "370", "750"}
	case config.KeySolveTemplate, config.KeyDistributedTemplate, config.KeyEigenTemplate:
		return render.Packaged()
	default:
		return nil
	}
}

// getConfigEnvVars returns the environment variable of every config key, sorted.
func getConfigEnvVars() []string {
	vars := make([]string, 0, len(config.Keys))
	for _, key := range config.Keys {
		vars = append(vars, config.EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	sort.Strings(vars)
	return vars
}

// normalizeConfigValue checks a value given on the command line and converts
// it to the type stored under key.
func normalizeConfigValue(key, value string) (interface{}, error) {
	value = strings.TrimSpace(value)
	switch key {
	case config.KeyTasksPerNode:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a whole number of at least 1, got %q", key, value)
		}
		return n, nil

	case config.KeyMaxNodes, config.KeyMaxCpus:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative whole number, got %q", key, value)
		}
		return n, nil

	case config.KeyMaxTimeLimit:
		// Stored in minutes; Go durations, HH:MM[:SS] and SLURM's D-HH[:MM[:SS]] are accepted too.
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return n, nil
		}
		d, err := utils.ParseDuration(value)
		if err != nil {
			if strings.Contains(value, "-") {
				d, err = scheduler.ParseTime(value)
			}
			if err != nil {
				return nil, err
			}
		}
		return int(d.Minutes()), nil

	case config.KeyTemplatesDir:
		if value != "" && !utils.DirExists(value) {
			return nil, fmt.Errorf("%s: directory not found: %s", key, value)
		}
		return value, nil

	case config.KeyWorkernodeMem:
		gib, err := utils.ParseSizeToGiB(value)
		if err != nil {
			return nil, err
		}
		return gib, nil

	case config.KeyPartitions, config.KeyModules:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%s needs at least one comma separated entry", key)
		}
		return items, nil
	}
	return value, nil
}

func isKnownKey(key string) bool {
	for _, k := range config.Keys {
		if k == key {
			return true
		}
	}
	return false
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jobbers configuration",
	Long: `Manage jobbers configuration settings.

Configuration file priority (highest to lowest):
  1. Environment variables (JOBBERS_*)
  2. User config file (~/.config/jobbers/config.yaml)
  3. Home config file (~/.jobbers/config.yaml)
  4. System config file (/etc/jobbers/config.yaml)
  5. Config file in the current directory (./config.yaml)
  6. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display current configuration values and their sources.

Shows:
  - Config file search paths and which one is in use
  - All configuration settings
  - Environment variable overrides`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showPath {
			return printUserConfigPath()
		}

		fmt.Println(utils.StyleTitle("Config File Search Paths:"))
		foundActive := false
		for i, sp := range config.GetConfigSearchPaths() {
			status := ""
			if sp.InUse {
				status = " " + utils.StyleSuccess("← in use")
				foundActive = true
			} else if sp.Exists {
				status = " " + utils.StyleInfo("(exists)")
			}
			fmt.Printf("  %d. [%s] %s%s\n", i+1, sp.Type, sp.Path, status)
		}
		if !foundActive {
			fmt.Printf("  %s (use 'jobbers config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Current Configuration:"))
		store := config.NewStore(nil)
		for _, key := range config.Keys {
			value, err := store.Get(key)
			switch {
			case errors.Is(err, config.ErrNotFound):
				fmt.Printf("  %-38s %s\n", key+":", utils.StyleInfo("(not set)"))
			case err != nil:
				fmt.Printf("  %-38s %s\n", key+":", utils.StyleError(err.Error()))
			default:
				fmt.Printf("  %-38s %v\n", key+":", value)
			}
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Packaged Templates:"))
		for _, name := range render.Packaged() {
			fmt.Printf("  %s\n", utils.StylePath(name))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Environment Variable Overrides:"))
		hasEnvOverrides := false
		for _, envVar := range getConfigEnvVars() {
			if val := os.Getenv(envVar); val != "" {
				fmt.Printf("  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Printf("  %s\n", utils.StyleInfo("none"))
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printUserConfigPath()
	},
}

func printUserConfigPath() error {
	configPath, err := config.GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Println(configPath)
	return nil
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  jobbers config get slurm.shared_scratch
  jobbers config get cluster.ntasks_per_node`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.NewStore(nil).Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save to the user config file.

Examples:
  jobbers config set slurm.shared_scratch /cluster/scratch
  jobbers config set cluster.ntasks_per_node 48
  jobbers config set cluster.max_timelimit_minutes 48h
  jobbers config set abaqus.workernode_mem_default 180G
  jobbers config set slurm.partitions batch,long,gpu

Time limits (cluster.max_timelimit_minutes) are stored in minutes:
  Minutes:   2880
  Go style:  48h, 90m
  HPC style: 48:00:00, 2:30 (HH:MM:SS or HH:MM)`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !isKnownKey(key) {
			utils.PrintWarning("'%s' is not a standard config key", key)
		}

		value, err := normalizeConfigValue(key, args[1])
		if err != nil {
			return err
		}
		viper.Set(key, value)

		configPath, err := config.SaveConfig()
		if err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		utils.PrintSuccess("Set %s = %v", utils.StyleInfo(key), utils.StyleInfo(fmt.Sprint(value)))
		utils.PrintNote("Config saved to: %s", utils.StylePath(configPath))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with defaults",
	Long: `Create the user configuration file (~/.config/jobbers/config.yaml)
with the packaged defaults, ready for editing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}

		if utils.FileExists(configPath) && !initForce {
			utils.PrintWarning("Config file already exists: %s", utils.StylePath(configPath))
			fmt.Fprint(utils.Out, "Overwrite? [y/N]: ")
			response, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if yes, err := utils.ParseBool(response); err != nil || !yes {
				utils.PrintNote("Cancelled")
				return nil
			}
		}

		if err := config.SaveConfigTo(configPath); err != nil {
			return err
		}
		utils.PrintSuccess("Config file created")
		utils.PrintMessage("Location: %s", utils.StylePath(configPath))
		utils.PrintHint("Set %s to give distributed jobs a worker node memory default.", utils.StyleName(config.KeyWorkernodeMem))
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showPath, "path", false, "Show only the config file path")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
}
