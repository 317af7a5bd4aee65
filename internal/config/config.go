// Package config loads the radar front-end configuration from YAML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-radar/internal/baselayer"
	"github.com/joeblew999/plat-radar/internal/capability"
	"github.com/joeblew999/plat-radar/internal/device"
	"github.com/joeblew999/plat-radar/internal/mapview"
	"github.com/joeblew999/plat-radar/internal/settings"
)

//go:embed default.yaml
var defaultYAML []byte

// EnvMapTilerKey overrides mapTilerKey when set.
const EnvMapTilerKey = "MAPTILER_KEY"

// Capability is one configured capability.
type Capability struct {
	Key         string  `yaml:"key" json:"key" doc:"Capability identifier" example:"radar"`
	Title       string  `yaml:"title" json:"title" doc:"Display name" example:"Radar"`
	TileURL     string  `yaml:"tileURL" json:"tileURL,omitempty" doc:"Data layer tile URL template"`
	MaxZoom     int     `yaml:"maxZoom" json:"maxZoom,omitempty" doc:"Highest zoom with data tiles"`
	Opacity     float64 `yaml:"opacity" json:"opacity,omitempty" doc:"Data layer opacity"`
	Attribution string  `yaml:"attribution" json:"attribution,omitempty" doc:"Attribution HTML"`
}

// Config is the application configuration.
type Config struct {
	Capabilities  []Capability      `yaml:"capabilities"`
	Settings      map[string]string `yaml:"settings"`
	MapTilerKey   string            `yaml:"mapTilerKey"`
	PixelRatio    float64           `yaml:"pixelRatio"`
	AppUserAgents []string          `yaml:"appUserAgents"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded default: %v", err))
	}
	return cfg
}

// Load reads the configuration at path, or the built-in one when path is
// empty. MAPTILER_KEY in the environment replaces the configured key.
func Load(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if key := os.Getenv(EnvMapTilerKey); key != "" {
		cfg.MapTilerKey = key
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that capabilities are present and unique and that the
// default capability is one of them.
func (c *Config) Validate() error {
	if len(c.Capabilities) == 0 {
		return errors.New("at least one capability is required")
	}
	seen := map[string]bool{}
	for i, cp := range c.Capabilities {
		if cp.Key == "" {
			return fmt.Errorf("capability %d: key is required", i)
		}
		if seen[cp.Key] {
			return fmt.Errorf("capability %q: duplicate key", cp.Key)
		}
		seen[cp.Key] = true
	}
	if def := c.Settings[settings.KeyCapability]; def != "" && !seen[def] {
		return fmt.Errorf("default capability %q is not configured", def)
	}
	if c.PixelRatio < 0 {
		return errors.New("pixelRatio must not be negative")
	}
	return nil
}

// Defaults returns the settings defaults, filling the default capability
// with the first configured one when unset.
func (c *Config) Defaults() map[string]string {
	d := make(map[string]string, len(c.Settings)+1)
	for k, v := range c.Settings {
		d[k] = v
	}
	if d[settings.KeyCapability] == "" && len(c.Capabilities) > 0 {
		d[settings.KeyCapability] = c.Capabilities[0].Key
	}
	return d
}

// Registry builds a fresh capability registry in configuration order.
func (c *Config) Registry() (*capability.Registry, error) {
	reg := capability.NewRegistry()
	for _, cp := range c.Capabilities {
		src := mapview.XYZ{URL: cp.TileURL, MaxZoom: cp.MaxZoom}
		if cp.Attribution != "" {
			src.Attributions = []string{cp.Attribution}
		}
		title := cp.Title
		if title == "" {
			title = cp.Key
		}
		if err := reg.Register(cp.Key, capability.NewTiled(cp.Key, title, src, cp.Opacity)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Catalog builds the base layer catalog.
func (c *Config) Catalog() *baselayer.Catalog {
	return baselayer.New(baselayer.Options{PixelRatio: c.PixelRatio, MapTilerKey: c.MapTilerKey})
}

// Device returns a detector for a request's User-Agent header.
func (c *Config) Device(userAgent string) device.Detector {
	return device.UserAgent{Header: userAgent, Markers: c.AppUserAgents}
}
