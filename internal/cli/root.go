// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gemaraproj/reqcite-mcp/internal/cache"
	"github.com/gemaraproj/reqcite-mcp/internal/config"
	"github.com/gemaraproj/reqcite-mcp/internal/evidence"
	"github.com/gemaraproj/reqcite-mcp/internal/logging"
	"github.com/gemaraproj/reqcite-mcp/internal/tool"
)

// Version is set at build time.
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reqcite",
	Short: "reqcite - collect requirement annotations for coverage analysis",
	Long: `reqcite gathers evidence that code is linked to specification requirements.

Evidence comes from two places:
- comments in source files (//= target, //# quoted requirement text)
- declaration files (toml, yaml, json or cue) listing citations,
  exceptions and todos explicitly

Both are normalized into one annotation record set that a coverage
report can consume. reqcite does not decide whether a requirement is
satisfied.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reqcite %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reqcite/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().Int("concurrency", 0, "number of files processed in parallel (default: number of CPUs)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "disable the per-file result cache")

	_ = viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".reqcite"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match REQCITE_*
	viper.SetEnvPrefix("REQCITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig folds the boolean flags into viper and decodes the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		viper.Set("cache.enabled", false)
	}
	if verbose {
		viper.Set("log.level", "debug")
	}
	return config.Load(viper.GetViper())
}

// environment is what every command needs after configuration is loaded.
type environment struct {
	cfg     config.Config
	logger  *slog.Logger
	handler *tool.Handler
	cleanup func()
}

func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, cleanup, err := logging.Setup(cfg.Log.File, level)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	opts := []evidence.Option{evidence.WithLogger(logger)}
	if cfg.Cache.Enabled {
		opts = append(opts, evidence.WithCache(cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)))
	}
	pipeline := evidence.NewPipeline(tool.DefaultParsers(), opts...)

	return &environment{
		cfg:     cfg,
		logger:  logger,
		handler: tool.NewHandler(pipeline, cfg.Pattern, cfg.Concurrency),
		cleanup: cleanup,
	}, nil
}
