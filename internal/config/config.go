package config

import (
	"github.com/spf13/viper"
)

// Config represents the full configuration structure
type Config struct {
	Image       ImageConfig       `mapstructure:"image"`
	Mounts      MountsConfig      `mapstructure:"mounts"`
	Command     CommandConfig     `mapstructure:"command"`
	Environment EnvironmentConfig `mapstructure:"environment"`
	Container   ContainerConfig   `mapstructure:"container"`
}

// ImageConfig configures the image and how it is acquired
type ImageConfig struct {
	Name  string `mapstructure:"name"`
	Pull  bool   `mapstructure:"pull"`  // pull when not present locally
	Login bool   `mapstructure:"login"` // prompt for registry login when the pull fails
}

// MountsConfig configures how host paths are mapped into the container
type MountsConfig struct {
	Mode     string       `mapstructure:"mode"` // random | host
	Defaults []MountEntry `mapstructure:"defaults"`
}

// MountEntry represents a single pre-registered mount
type MountEntry struct {
	Path     string `mapstructure:"path"`
	ReadOnly bool   `mapstructure:"readonly"`
}

// CommandConfig configures the command executed inside the container
type CommandConfig struct {
	Prefix []string `mapstructure:"prefix"` // e.g. ["python"]
}

// EnvironmentConfig configures environment variables
type EnvironmentConfig struct {
	Passthrough []string          `mapstructure:"passthrough"`
	Custom      map[string]string `mapstructure:"custom"`
	Sentinel    string            `mapstructure:"sentinel"`
}

// ContainerConfig configures container runtime settings
type ContainerConfig struct {
	User        string   `mapstructure:"user"`         // auto, or uid:gid
	MemoryLimit string   `mapstructure:"memory_limit"` // e.g., "4g"
	Network     string   `mapstructure:"network"`      // bridge, none, host
	GPUs        string   `mapstructure:"gpus"`         // "", "all", "device=<id>[,<id>...]"
	Ports       []string `mapstructure:"ports"`        // docker-style port specs
	AutoRemove  bool     `mapstructure:"auto_remove"`
}

// LoadConfig loads configuration from viper with defaults
func LoadConfig() *Config {
	setDefaults()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		// Return defaults on error
		return defaultConfig()
	}

	return cfg
}

func setDefaults() {
	// Image defaults
	viper.SetDefault("image.name", "")
	viper.SetDefault("image.pull", true)
	viper.SetDefault("image.login", true)

	// Mount defaults
	viper.SetDefault("mounts.mode", MountModeRandom)
	viper.SetDefault("mounts.defaults", []MountEntry{})

	// Command defaults
	viper.SetDefault("command.prefix", []string{})

	// Environment defaults
	viper.SetDefault("environment.passthrough", []string{"TERM"})
	viper.SetDefault("environment.custom", map[string]string{})
	viper.SetDefault("environment.sentinel", DefaultSentinel)

	// Container defaults
	viper.SetDefault("container.user", "")
	viper.SetDefault("container.memory_limit", "")
	viper.SetDefault("container.network", NetworkBridge)
	viper.SetDefault("container.gpus", "")
	viper.SetDefault("container.ports", []string{})
	viper.SetDefault("container.auto_remove", true)
}

func defaultConfig() *Config {
	return &Config{
		Image: ImageConfig{
			Pull:  true,
			Login: true,
		},
		Mounts: MountsConfig{
			Mode:     MountModeRandom,
			Defaults: []MountEntry{},
		},
		Command: CommandConfig{
			Prefix: []string{},
		},
		Environment: EnvironmentConfig{
			Passthrough: []string{"TERM"},
			Custom:      map[string]string{},
			Sentinel:    DefaultSentinel,
		},
		Container: ContainerConfig{
			Network:    NetworkBridge,
			Ports:      []string{},
			AutoRemove: true,
		},
	}
}
