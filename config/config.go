// Package config layers tool settings from defaults, an optional
// config file, environment variables, and CLI flags, in increasing
// order of precedence.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file.
type Config struct {
	OutputDir       string   `mapstructure:"output_dir"`
	Exclude         []string `mapstructure:"exclude"`
	LogLevel        string   `mapstructure:"log_level"`
	WatchDebounceMs int      `mapstructure:"watch_debounce_ms"`
}

// DefaultConfig values.
var DefaultConfig = Config{
	OutputDir:       "",
	Exclude:         nil,
	LogLevel:        "info",
	WatchDebounceMs: 250,
}

// Load builds the final configuration. cfgFile overrides the default
// config file lookup; cmd's flags, when set, override everything.
func Load(cmd *cobra.Command, cwd string, cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("REPOXRAY")
	v.AutomaticEnv()
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("repoxray")
		v.AddConfigPath(cwd)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			// No config file is fine; defaults apply.
			v.SetConfigType("json")
			_ = v.ReadInConfig()
		}
	}

	bindFlags(v, cmd)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", DefaultConfig.OutputDir)
	v.SetDefault("exclude", DefaultConfig.Exclude)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("watch_debounce_ms", DefaultConfig.WatchDebounceMs)
}

// bindEnv explicitly binds environment variables to configuration keys.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("output_dir", "REPOXRAY_OUTPUT_DIR")
	_ = v.BindEnv("log_level", "REPOXRAY_LOG_LEVEL")
	_ = v.BindEnv("watch_debounce_ms", "REPOXRAY_WATCH_DEBOUNCE_MS")
}

// bindFlags binds CLI flags to configuration values. Only flags the
// user actually set take effect.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	if f := cmd.Flags().Lookup("output"); f != nil {
		_ = v.BindPFlag("output_dir", f)
	}
	if f := cmd.Flags().Lookup("exclude"); f != nil {
		_ = v.BindPFlag("exclude", f)
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil {
		_ = v.BindPFlag("log_level", f)
	}
	if f := cmd.Flags().Lookup("watch-debounce"); f != nil {
		_ = v.BindPFlag("watch_debounce_ms", f)
	}
}
