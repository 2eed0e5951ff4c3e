package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Server
	ListenAddr         string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel           string   `mapstructure:"log_level" yaml:"log_level"`
	CORSOrigins        []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	ShutdownTimeoutSec int      `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	// Explore tab
	PreviewRows    int `mapstructure:"preview_rows" yaml:"preview_rows"`
	DefaultColumns int `mapstructure:"default_columns" yaml:"default_columns"`
	ViewerMinAds   int `mapstructure:"viewer_min_ads" yaml:"viewer_min_ads"`

	// Charts
	HistogramBins    int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	StackedTopModels int `mapstructure:"stacked_top_models" yaml:"stacked_top_models"`
	GroupTopN        int `mapstructure:"group_top_n" yaml:"group_top_n"`
	CompareTopModels int `mapstructure:"compare_top_models" yaml:"compare_top_models"`
	CompareBins      int `mapstructure:"compare_bins" yaml:"compare_bins"`
	ChartWidth       int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight      int `mapstructure:"chart_height" yaml:"chart_height"`
}

// Dir returns ~/.vehdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".vehdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.vehdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("VEHDASH")
	v.AutomaticEnv()

	v.SetDefault("data_path", "vehicles_us.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("shutdown_timeout_sec", 10)
	v.SetDefault("preview_rows", 100)
	v.SetDefault("default_columns", 8)
	v.SetDefault("viewer_min_ads", 1000)
	v.SetDefault("histogram_bins", 50)
	v.SetDefault("stacked_top_models", 15)
	v.SetDefault("group_top_n", 8)
	v.SetDefault("compare_top_models", 30)
	v.SetDefault("compare_bins", 40)
	v.SetDefault("chart_width", 960)
	v.SetDefault("chart_height", 480)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a file that exists but does not parse is an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// DelimiterRune maps the delimiter setting to a CSV separator; 0 means auto.
func (c *Global) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab')", c.Delimiter)
	}
}
