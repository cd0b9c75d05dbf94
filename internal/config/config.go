package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/pipeline"
)

const envPrefix = "PLATES"

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Detector DetectorConfig `mapstructure:"detector"`
	Filter   FilterConfig   `mapstructure:"filter"`
}

type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type PipelineConfig struct {
	StabilityThreshold int `mapstructure:"stability_threshold"`
	HistorySize        int `mapstructure:"history_size"`
	MinDetectionLength int `mapstructure:"min_detection_length"`
	FrameSkip          int `mapstructure:"frame_skip"`
}

// DetectorConfig is handed to the external detector; it is only validated here.
type DetectorConfig struct {
	ModelSize           string  `mapstructure:"model_size"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	ImageSize           int     `mapstructure:"image_size"`
}

type FilterConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	PatternType           string `mapstructure:"pattern_type"`
	CustomPattern         string `mapstructure:"custom_pattern"`
	AllowMultiplePatterns bool   `mapstructure:"allow_multiple_patterns"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("database.dsn", "")

	d := pipeline.DefaultSettings()
	v.SetDefault("pipeline.stability_threshold", d.StabilityThreshold)
	v.SetDefault("pipeline.history_size", d.HistorySize)
	v.SetDefault("pipeline.min_detection_length", d.MinDetectionLength)
	v.SetDefault("pipeline.frame_skip", d.FrameSkip)

	v.SetDefault("detector.model_size", "s")
	v.SetDefault("detector.confidence_threshold", 0.25)
	v.SetDefault("detector.image_size", 640)

	v.SetDefault("filter.enabled", true)
	v.SetDefault("filter.pattern_type", string(plate.PatternStandard))
	v.SetDefault("filter.custom_pattern", "")
	v.SetDefault("filter.allow_multiple_patterns", false)
}

// Load reads defaults, then the optional config file at path, then
// PLATES_* environment variables (PLATES_PIPELINE_FRAME_SKIP and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	settings, err := c.PipelineSettings().Normalize()
	if err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	} else {
		c.Pipeline.HistorySize = settings.HistorySize
	}

	switch c.Detector.ModelSize {
	case "n", "s", "m":
	default:
		errs = append(errs, fmt.Errorf("detector: model_size must be one of n, s, m, got %q", c.Detector.ModelSize))
	}
	if c.Detector.ConfidenceThreshold <= 0 || c.Detector.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("detector: confidence_threshold must be in (0, 1], got %v", c.Detector.ConfidenceThreshold))
	}
	if c.Detector.ImageSize <= 0 {
		errs = append(errs, fmt.Errorf("detector: image_size must be positive, got %d", c.Detector.ImageSize))
	}

	if !plate.PatternName(c.Filter.PatternType).Valid() {
		errs = append(errs, fmt.Errorf("filter: unknown pattern_type %q", c.Filter.PatternType))
	}

	return errors.Join(errs...)
}

func (c *Config) PipelineSettings() pipeline.Settings {
	return pipeline.Settings{
		StabilityThreshold: c.Pipeline.StabilityThreshold,
		HistorySize:        c.Pipeline.HistorySize,
		MinDetectionLength: c.Pipeline.MinDetectionLength,
		FrameSkip:          c.Pipeline.FrameSkip,
	}
}

func (c *Config) FilterSettings() plate.FilterConfig {
	return plate.FilterConfig{
		Enabled:          c.Filter.Enabled,
		ActivePattern:    plate.PatternName(c.Filter.PatternType),
		CustomExpression: c.Filter.CustomPattern,
		MultiPatternMode: c.Filter.AllowMultiplePatterns,
	}
}
