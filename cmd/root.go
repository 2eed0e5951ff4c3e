package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/KaramelBytes/vehdash/internal/config"
	"github.com/KaramelBytes/vehdash/internal/dataset"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	dataPath string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "vehdash",
	Short: "Vehicle listings dashboard",
	Long: `vehdash explores a vehicle-listings CSV: filter by model year, type, condition
and price, inspect summary metrics, export the filtered rows and render charts,
from the command line or through a small web dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.vehdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "listings file (overrides config data_path)")
}

func loadConfig() {
	if os.Getenv("VEHDASH_ENV") != "production" {
		// .env is optional
		_ = godotenv.Load()
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config reload and report it
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	if rootCmd.PersistentFlags().Changed("data") && dataPath != "" {
		c.DataPath = dataPath
	}
	cfg = c
}

// currentConfig returns the loaded configuration, loading it if the
// initializer could not.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		c.DataPath = dataPath
	}
	cfg = c
	return cfg, nil
}

// newLogger builds a development logger for --debug or log_level=debug and a
// production logger at the configured level otherwise.
func newLogger(level string) (*zap.Logger, error) {
	if debug || strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

// openCache prepares the listings cache for the configured file.
func openCache(c *cfgpkg.Global, logger *zap.Logger) (*dataset.Cache, error) {
	delim, err := c.DelimiterRune()
	if err != nil {
		return nil, err
	}
	return dataset.NewCache(c.DataPath, dataset.LoadOptions{Delimiter: delim}, logger), nil
}

// loadTable loads the listings for a one-shot command, from path when given.
// CLI commands only log warnings unless --debug is set.
func loadTable(path string) (*cfgpkg.Global, *dataset.Table, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		cc := *c
		cc.DataPath = path
		c = &cc
	}
	level := "warn"
	if debug {
		level = "debug"
	}
	logger, err := newLogger(level)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = logger.Sync() }()
	cache, err := openCache(c, logger)
	if err != nil {
		return nil, nil, err
	}
	t, err := cache.Table()
	if err != nil {
		return nil, nil, err
	}
	return c, t, nil
}
