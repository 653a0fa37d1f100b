package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the defaults read from the configuration file. Flags given on
// the command line override them.
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
	Debug   bool   `mapstructure:"debug"`

	// Trace and retrace defaults
	Compact     bool   `mapstructure:"compact"`
	Raw         bool   `mapstructure:"raw"`
	YUV         bool   `mapstructure:"yuv"`
	VideoDevice string `mapstructure:"video_device"`
	MediaDevice string `mapstructure:"media_device"`

	// LibPath overrides the directory holding libv4l2tracer.so.
	LibPath string `mapstructure:"lib_path"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format: "text",
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("v4l2-tracer")
	v.SetConfigType("yaml")

	// Add config paths (in order of precedence, lowest first)
	// 1. System-wide config
	v.AddConfigPath("/etc/v4l2-tracer/")
	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "v4l2-tracer"))
	}
	// 3. Current directory
	v.AddConfigPath(".")

	// Environment variables. The shim's V4L2_TRACER_OPTION_* variables are
	// not read here; they are inherited through Inherit.
	v.SetEnvPrefix("V4L2_TRACER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("lib_path", "V4L2_TRACER_LIB_PATH")
	v.BindEnv("format", "V4L2_TRACER_FORMAT")

	setDefaults(v)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	v := viper.New()

	v.SetConfigName("v4l2-tracer")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/v4l2-tracer/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "v4l2-tracer"))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	return ""
}

func setDefaults(v *viper.Viper) {
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("debug", cfg.Debug)
	v.SetDefault("compact", cfg.Compact)
	v.SetDefault("raw", cfg.Raw)
	v.SetDefault("yuv", cfg.YUV)
	v.SetDefault("video_device", cfg.VideoDevice)
	v.SetDefault("media_device", cfg.MediaDevice)
	v.SetDefault("lib_path", cfg.LibPath)
}
