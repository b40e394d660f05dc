// Package config loads runtime settings from an optional YAML file and OXYRIG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. OXYRIG_IK_ITERATIONS.
const EnvPrefix = "OXYRIG"

// Config is the complete runtime configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	IK       IKConfig       `mapstructure:"ik" yaml:"ik"`
	Playback PlaybackConfig `mapstructure:"playback" yaml:"playback"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Render   RenderConfig   `mapstructure:"render" yaml:"render"`
}

// EngineConfig configures the step loop.
type EngineConfig struct {
	TickRate  float64 `mapstructure:"tick_rate" yaml:"tick_rate"` // steps per second
	Workers   int     `mapstructure:"workers" yaml:"workers"`     // 0 = NumCPU-1
	Profiling bool    `mapstructure:"profiling" yaml:"profiling"`
}

// IKConfig configures the CCD solver.
type IKConfig struct {
	Iterations int     `mapstructure:"iterations" yaml:"iterations"`
	Epsilon    float64 `mapstructure:"epsilon" yaml:"epsilon"`     // minimum rotation angle in radians
	Threshold  float64 `mapstructure:"threshold" yaml:"threshold"` // convergence distance
}

// PlaybackConfig configures clip playback.
type PlaybackConfig struct {
	Speed float64 `mapstructure:"speed" yaml:"speed"`
	// Loop overrides the Loop flag of played clips when set.
	Loop *bool `mapstructure:"loop" yaml:"loop,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // trace, debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console or json
	File   string `mapstructure:"file" yaml:"file"`     // optional, appended to
}

// RenderConfig selects the frame sink.
type RenderConfig struct {
	Backend              string `mapstructure:"backend" yaml:"backend"` // none, log or wgpu
	Label                string `mapstructure:"label" yaml:"label"`
	ForceFallbackAdapter bool   `mapstructure:"force_fallback_adapter" yaml:"force_fallback_adapter"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate: 60,
		},
		IK: IKConfig{
			Iterations: 10,
			Epsilon:    0.001,
			Threshold:  0.01,
		},
		Playback: PlaybackConfig{
			Speed: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Render: RenderConfig{
			Backend: "log",
			Label:   "oxy-rig",
		},
	}
}

// Load reads the configuration. Values come from, in increasing precedence: Default, the YAML file at
// path (optional; a missing file is not an error when path is empty) and OXYRIG_* environment variables.
//
// Parameters:
//   - path: the config file, or empty to look for oxy-rig.yaml in the working directory
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file cannot be read or the result is invalid
func Load(path string) (*Config, error) {
	cfg := Default()
	v := newViper(cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("oxy-rig")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func Save(cfg *Config, path string) error {
	v := newViper(cfg)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// newViper creates an isolated viper instance whose defaults are cfg.
// Every key is registered as a default so that AutomaticEnv can override it during Unmarshal.
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("engine.tick_rate", cfg.Engine.TickRate)
	v.SetDefault("engine.workers", cfg.Engine.Workers)
	v.SetDefault("engine.profiling", cfg.Engine.Profiling)
	v.SetDefault("ik.iterations", cfg.IK.Iterations)
	v.SetDefault("ik.epsilon", cfg.IK.Epsilon)
	v.SetDefault("ik.threshold", cfg.IK.Threshold)
	v.SetDefault("playback.speed", cfg.Playback.Speed)
	if cfg.Playback.Loop != nil {
		v.SetDefault("playback.loop", *cfg.Playback.Loop)
	} else {
		_ = v.BindEnv("playback.loop")
	}
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("render.backend", cfg.Render.Backend)
	v.SetDefault("render.label", cfg.Render.Label)
	v.SetDefault("render.force_fallback_adapter", cfg.Render.ForceFallbackAdapter)
	return v
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.tick_rate must be > 0, got %g", c.Engine.TickRate))
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("engine.workers must be >= 0, got %d", c.Engine.Workers))
	}
	if c.IK.Iterations < 1 {
		errs = append(errs, fmt.Errorf("ik.iterations must be >= 1, got %d", c.IK.Iterations))
	}
	if c.IK.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("ik.epsilon must be >= 0, got %g", c.IK.Epsilon))
	}
	if c.IK.Threshold < 0 {
		errs = append(errs, fmt.Errorf("ik.threshold must be >= 0, got %g", c.IK.Threshold))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	switch strings.ToLower(strings.TrimSpace(c.Render.Backend)) {
	case "", "none", "log", "wgpu":
	default:
		errs = append(errs, fmt.Errorf("render.backend must be none, log or wgpu, got %q", c.Render.Backend))
	}
	return errors.Join(errs...)
}
