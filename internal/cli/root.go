package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/clog/slag"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockrun/dockrun/internal/config"
)

var (
	cfgFile  string
	logLevel slag.Level
	cfg      *config.Config

	// exit status reported by the container, relayed by Execute so the
	// process can exit with the same code
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "dockrun [flags] -- command [args...]",
	Short: "Run a command line transparently inside a container",
	Long: `Dockrun re-executes a command line inside a Docker container. Host paths
appearing as arguments are translated into container paths backed by bind
mounts, and the container's exit status and output are relayed so the
indirection is invisible to calling scripts.

Arguments after -- are rebuilt for the container: tokens naming existing
host paths are mounted and substituted with their container paths, flag
tokens and plain values pass through unchanged.

Examples:
  dockrun --image python:3.12 -- python train.py data.csv
  dockrun --image python:3.12 --script train.py -- data.csv
  dockrun --image alpine --create out.txt -- sh -c 'date > out.txt'
  dockrun --image pytorch/pytorch --gpus all -- python train.py
  dockrun --image python:3.12 --mount-mode host -- python /abs/path/script.py`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.SetContext(setupLogging(cmd.Context()))
	},
	RunE:          runContainer,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
}

// setupLogging routes structured logs through a charmbracelet handler on
// stderr, keeping stdout clean for relayed container output.
func setupLogging(ctx context.Context) context.Context {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           charmlog.Level(logLevel),
		ReportTimestamp: true,
	})
	ctx = clog.WithLogger(ctx, clog.New(l))
	slog.SetDefault(slog.New(l))
	return ctx
}

// Execute runs the CLI and returns the container's exit code alongside any
// error. The caller is expected to exit with that code.
func Execute() (int, error) {
	err := rootCmd.Execute()
	return exitCode, err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dockrun/config.yaml)")
	rootCmd.PersistentFlags().Var(&logLevel, "log-level", "log level (debug, info, warn, error)")

	// Run flags
	rootCmd.Flags().StringP("image", "i", "", "image to run the command in")
	rootCmd.Flags().StringArray("prefix", nil, "run-command prefix prepended inside the container (e.g. python)")
	rootCmd.Flags().String("script", "", "script file mounted read-only and substituted as the first argument")
	rootCmd.Flags().StringP("workdir", "w", "", "container working directory (default: current directory)")
	rootCmd.Flags().String("mount-mode", "", "how container paths are derived: random or host")
	rootCmd.Flags().StringArrayP("mount", "m", nil, "additional host paths to mount read-write")
	rootCmd.Flags().StringArray("mount-ro", nil, "additional host paths to mount read-only")
	rootCmd.Flags().StringArray("create", nil, "trailing tokens that name output paths which do not exist yet")
	rootCmd.Flags().Bool("no-auto-mount", false, "do not mount trailing tokens that name existing host paths")
	rootCmd.Flags().StringArray("extra-arg", nil, "tokens appended verbatim after all declared arguments")
	rootCmd.Flags().StringArrayP("env", "e", nil, "environment variables for the container (KEY=VALUE)")
	rootCmd.Flags().String("network", "", "network mode: bridge, none, host")
	rootCmd.Flags().String("memory", "", "memory limit (e.g. 4g)")
	rootCmd.Flags().String("gpus", "", `GPU request: "all" or "device=<id>[,<id>...]"`)
	rootCmd.Flags().StringArrayP("publish", "p", nil, "publish container ports (e.g. 8080:80)")
	rootCmd.Flags().String("user", "", "user inside the container: auto, or uid:gid")
	rootCmd.Flags().Bool("keep", false, "keep the container after it exits")
	rootCmd.Flags().Bool("no-pull", false, "fail instead of pulling when the image is missing locally")

	// Bind flags to viper for config integration
	viper.BindPFlag("image.name", rootCmd.Flags().Lookup("image"))
	viper.BindPFlag("mounts.mode", rootCmd.Flags().Lookup("mount-mode"))
	viper.BindPFlag("container.network", rootCmd.Flags().Lookup("network"))
	viper.BindPFlag("container.memory_limit", rootCmd.Flags().Lookup("memory"))
	viper.BindPFlag("container.gpus", rootCmd.Flags().Lookup("gpus"))
	viper.BindPFlag("container.user", rootCmd.Flags().Lookup("user"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Warning: could not find home directory:", err)
			return
		}

		// Search for config in standard locations
		viper.AddConfigPath(home + "/.config/dockrun")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("DOCKRUN")
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Warning: error reading config file:", err)
		}
	}

	// Load into config struct
	cfg = config.LoadConfig()
}
