// Package config handles blinkwatch configuration
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/blinkwatch/blinkwatch/internal/alert"
	"github.com/blinkwatch/blinkwatch/internal/blink"
)

// Defaults
const (
	DefaultHTTPAddr   = ":8780"
	DefaultCaptureURL = "ws://localhost:8765/frames"
	DefaultNotifyMode = "auto"
)

// Duration accepts human-readable YAML values ("90s", "4m") as well as
// bare numbers, which are read as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: bad duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}

	var n float64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("config: bad duration node: %w", err)
	}
	*d = Duration(time.Duration(n * float64(time.Second)))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration. Values resolve as
// defaults → YAML file → environment.
type Config struct {
	HTTPAddr   string `yaml:"http_addr"`
	CaptureURL string `yaml:"capture_url"`
	NotifyMode string `yaml:"notify_mode"` // "auto" | "console"

	// Detection parameters, fixed at session start
	BaselineFrames    int      `yaml:"baseline_frames"`
	EARThresholdRatio float64  `yaml:"ear_threshold_ratio"`
	MinBlinkFrames    int      `yaml:"min_blink_frames"`
	RateWindow        Duration `yaml:"rate_window"`

	// Alert tunables, live-reloadable
	LowRateThreshold  float64  `yaml:"low_rate_threshold"`
	AlertCooldown     Duration `yaml:"alert_cooldown"`
	MinSessionTime    Duration `yaml:"min_session_time"`
	MinBlinksForAlert int      `yaml:"min_blinks_for_alert"`
}

// Default returns the baked-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:          DefaultHTTPAddr,
		CaptureURL:        DefaultCaptureURL,
		NotifyMode:        DefaultNotifyMode,
		BaselineFrames:    blink.DefaultBaselineFrames,
		EARThresholdRatio: blink.DefaultThresholdRatio,
		MinBlinkFrames:    blink.DefaultMinBlinkFrames,
		RateWindow:        Duration(blink.DefaultRateWindow),
		LowRateThreshold:  alert.DefaultRateThreshold,
		AlertCooldown:     Duration(alert.DefaultCooldown),
		MinSessionTime:    Duration(alert.DefaultMinSessionTime),
		MinBlinksForAlert: alert.DefaultMinBlinksForAlert,
	}
}

// Load builds the configuration. path may be empty to skip the file layer.
// A .env file in the working directory is honored before reading the
// environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.CaptureURL = getEnv("CAPTURE_URL", c.CaptureURL)
	c.NotifyMode = getEnv("NOTIFY_MODE", c.NotifyMode)
	c.BaselineFrames = getEnvInt("BASELINE_FRAMES", c.BaselineFrames)
	c.EARThresholdRatio = getEnvFloat("EAR_THRESHOLD_RATIO", c.EARThresholdRatio)
	c.MinBlinkFrames = getEnvInt("MIN_BLINK_FRAMES", c.MinBlinkFrames)
	c.RateWindow = getEnvDuration("RATE_WINDOW", c.RateWindow)
	c.LowRateThreshold = getEnvFloat("LOW_RATE_THRESHOLD", c.LowRateThreshold)
	c.AlertCooldown = getEnvDuration("ALERT_COOLDOWN", c.AlertCooldown)
	c.MinSessionTime = getEnvDuration("MIN_SESSION_TIME", c.MinSessionTime)
	c.MinBlinksForAlert = getEnvInt("MIN_BLINKS_FOR_ALERT", c.MinBlinksForAlert)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.BaselineFrames < 1:
		return fmt.Errorf("config: baseline_frames must be positive, got %d", c.BaselineFrames)
	case c.EARThresholdRatio <= 0 || c.EARThresholdRatio >= 1:
		return fmt.Errorf("config: ear_threshold_ratio must be in (0,1), got %f", c.EARThresholdRatio)
	case c.MinBlinkFrames < 1:
		return fmt.Errorf("config: min_blink_frames must be positive, got %d", c.MinBlinkFrames)
	case c.RateWindow.Std() <= 0:
		return fmt.Errorf("config: rate_window must be positive, got %v", c.RateWindow.Std())
	case c.LowRateThreshold <= 0:
		return fmt.Errorf("config: low_rate_threshold must be positive, got %f", c.LowRateThreshold)
	case c.AlertCooldown.Std() <= 0:
		return fmt.Errorf("config: alert_cooldown must be positive, got %v", c.AlertCooldown.Std())
	case c.MinBlinksForAlert < 0:
		return fmt.Errorf("config: min_blinks_for_alert must be non-negative, got %d", c.MinBlinksForAlert)
	}
	return nil
}

// Detection returns the per-session detection parameters.
func (c *Config) Detection() blink.Config {
	return blink.Config{
		BaselineFrames: c.BaselineFrames,
		ThresholdRatio: c.EARThresholdRatio,
		MinBlinkFrames: c.MinBlinkFrames,
		RateWindow:     c.RateWindow.Std(),
	}
}

// AlertParams returns the alert tunables.
func (c *Config) AlertParams() alert.Params {
	return alert.Params{
		RateThreshold:     c.LowRateThreshold,
		Cooldown:          c.AlertCooldown.Std(),
		MinSessionTime:    c.MinSessionTime.Std(),
		MinBlinksForAlert: c.MinBlinksForAlert,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def Duration) Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return Duration(d)
		}
	}
	return def
}
