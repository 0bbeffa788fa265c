package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dockrun/dockrun/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configPathCmd, configInitCmd)

	configListCmd.Flags().Bool("yaml", false, "print settings as YAML")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dockrun configuration",
	Long: `Manage dockrun configuration settings.

Examples:
  dockrun config list
  dockrun config get mounts.mode
  dockrun config set mounts.mode host
  dockrun config set container.auto_remove false`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := viper.AllSettings()
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			out, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to render settings: %w", err)
			}
			fmt.Print(string(out))
			return nil
		}
		for _, line := range flattenSettings("", settings) {
			fmt.Println(line)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !viper.IsSet(key) {
			return fmt.Errorf("key not found: %s", key)
		}
		if section, ok := viper.Get(key).(map[string]any); ok {
			for _, line := range flattenSettings(key, section) {
				fmt.Println(line)
			}
			return nil
		}
		fmt.Println(viper.Get(key))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := validateConfigKey(key, value); err != nil {
			return err
		}

		path := configFilePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		if b, err := strconv.ParseBool(value); err == nil {
			viper.Set(key, b)
		} else {
			viper.Set(key, value)
		}
		if err := viper.WriteConfigAs(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Println(used)
			return
		}
		fmt.Println(configFilePath())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		fmt.Printf("Created config file at %s\n", path)
		return nil
	},
}

const starterConfig = `# Dockrun configuration

# Image settings
image:
  name: ""          # Image to run commands in (required unless --image is given)
  pull: true        # Pull the image when it is not present locally
  login: true       # Prompt for registry login when the pull is denied

# How host paths become container paths
mounts:
  mode: random      # random | host
  defaults: []      # Mounts registered on every run
    # - path: ~/datasets
    #   readonly: true

# Command executed inside the container
command:
  prefix: []        # Prepended to the rebuilt command line
    # Example: ["python"]

# Environment variables
environment:
  passthrough:
    - TERM
  custom: {}
    # DEBUG: "false"
  sentinel: DOCKRUN_CONTAINER  # Set to "1" inside the container

# Container settings
container:
  user: ""            # auto | uid:gid (empty: image default)
  memory_limit: ""    # e.g. 4g
  network: bridge     # bridge | none | host
  gpus: ""            # "" | all | device=<id>[,<id>...]
  ports: []           # e.g. ["8080:80"]
  auto_remove: true
`

// flattenSettings renders nested settings as sorted dot-notation lines.
func flattenSettings(prefix string, settings map[string]any) []string {
	var lines []string
	for key, value := range settings {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			lines = append(lines, flattenSettings(full, nested)...)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %v", full, value))
	}
	sort.Strings(lines)
	return lines
}

func configFilePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dockrun", "config.yaml")
}

// validateConfigKey rejects out-of-range values for enumerated keys.
// Keys without an enumeration pass through untouched.
func validateConfigKey(key, value string) error {
	allowed, ok := map[string][]string{
		"mounts.mode":       {config.MountModeRandom, config.MountModeHost},
		"container.network": {config.NetworkBridge, config.NetworkNone, config.NetworkHost},
	}[key]
	if !ok {
		return nil
	}
	for _, v := range allowed {
		if value == v {
			return nil
		}
	}
	return fmt.Errorf("invalid value for %s: %s (allowed: %s)", key, value, strings.Join(allowed, ", "))
}
