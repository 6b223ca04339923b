package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobbers/jobbers/internal/utils"
	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix is the prefix of environment overrides (JOBBERS_SLURM_SHARED_SCRATCH, ...)
const EnvPrefix = "JOBBERS"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Environment variables (JOBBERS_*)
// 2. User config file (~/.config/jobbers/config.yaml)
// 3. Home directory config file (~/.jobbers/config.yaml)
// 4. System config file (/etc/jobbers/config.yaml)
// 5. Packaged defaults
func InitViper() error {
	v := viper.GetViper()
	v.SetConfigName(ConfigFilename)
	v.SetConfigType(ConfigType)

	for _, sp := range GetConfigSearchPaths() {
		v.AddConfigPath(sp.Dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Read config file (non-fatal if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	Global.ConfigFile = v.ConfigFileUsed()

	return nil
}

// SetDefaults registers the packaged defaults on v.
// abaqus.workernode_mem_default deliberately has no default.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySharedScratch, "/scratch")
	v.SetDefault(KeyDefaultPartition, "batch")
	v.SetDefault(KeyPartitions, []string{"batch", "debug", "gpu"})

	v.SetDefault(KeyModules, []string{"ABAQUS/2019", "ABAQUS/2021", "ABAQUS/2022"})
	v.SetDefault(KeyLicense, "abaqus@slurmdbd")
	v.SetDefault(KeyTemplatesDir, "")
	v.SetDefault(KeySolveTemplate, "abaqus-solve-template.tmpl")
	v.SetDefault(KeyDistributedTemplate, "abaqus-distributed-template.tmpl")
	v.SetDefault(KeyEigenTemplate, "abaqus-eigenfrequency-template.tmpl")

	v.SetDefault(KeyTasksPerNode, 36)
	v.SetDefault(KeyMaxNodes, 0)
	v.SetDefault(KeyMaxCpus, 0)
	v.SetDefault(KeyMaxTimeLimit, 0)
}

// ConfigSearchPath describes one directory viper looks in for config.yaml.
type ConfigSearchPath struct {
	Type   string // user, home, system, local
	Dir    string
	Path   string // Dir joined with config.yaml
	Exists bool
	InUse  bool
}

// GetConfigSearchPaths returns the config search directories in priority order.
func GetConfigSearchPaths() []ConfigSearchPath {
	var paths []ConfigSearchPath
	add := func(kind, dir string) {
		p := filepath.Join(dir, ConfigFilename+"."+ConfigType)
		_, err := os.Stat(p)
		abs, _ := filepath.Abs(p)
		paths = append(paths, ConfigSearchPath{
			Type:   kind,
			Dir:    dir,
			Path:   p,
			Exists: err == nil,
			InUse:  Global.ConfigFile != "" && (Global.ConfigFile == p || Global.ConfigFile == abs),
		})
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		add("user", filepath.Join(userConfigDir, "jobbers"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		add("home", filepath.Join(home, ".jobbers"))
	}
	add("system", "/etc/jobbers")
	add("local", ".")

	return paths
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".jobbers", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "jobbers", ConfigFilename+"."+ConfigType), nil
}

// SaveConfigTo writes the current Viper settings (defaults included) to path.
func SaveConfigTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), utils.PermDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig saves current Viper config to the user config file
func SaveConfig() (string, error) {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	return configPath, SaveConfigTo(configPath)
}
