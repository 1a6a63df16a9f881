package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServiceCfg struct {
	HTTPListen  string `yaml:"http_listen"`
	MetricsPath string `yaml:"metrics_path"`
	HealthzPath string `yaml:"healthz_path"`
	LogLevel    string `yaml:"log_level"`
	DataDir     string `yaml:"data_dir"`
}

type LimitsCfg struct {
	MaxExamples    int `yaml:"max_examples"`
	MaxClassifiers int `yaml:"max_classifiers"`
}

type DefaultsCfg struct {
	Classifiers int     `yaml:"classifiers"`
	Alpha       float64 `yaml:"alpha"`
	WilsonZ     float64 `yaml:"wilson_z"`
}

type CacheCfg struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Service  ServiceCfg  `yaml:"service"`
	Limits   LimitsCfg   `yaml:"limits"`
	Defaults DefaultsCfg `yaml:"defaults"`
	Cache    CacheCfg    `yaml:"cache"`
}

func Default() *Config {
	return &Config{
		Service: ServiceCfg{
			HTTPListen:  ":8080",
			MetricsPath: "/metrics",
			HealthzPath: "/healthz",
			LogLevel:    "info",
			DataDir:     "data",
		},
		Limits: LimitsCfg{
			MaxExamples:    100000,
			MaxClassifiers: 1000000,
		},
		Defaults: DefaultsCfg{
			Classifiers: 1,
			Alpha:       0.05,
			WilsonZ:     1.959964,
		},
		Cache: CacheCfg{Enabled: true},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Limits.MaxExamples <= 0 {
		return fmt.Errorf("limits.max_examples must be positive, got %d", c.Limits.MaxExamples)
	}
	if c.Limits.MaxClassifiers <= 0 {
		return fmt.Errorf("limits.max_classifiers must be positive, got %d", c.Limits.MaxClassifiers)
	}
	if c.Defaults.Classifiers <= 0 {
		c.Defaults.Classifiers = 1
	}
	if c.Defaults.Alpha <= 0 || c.Defaults.Alpha >= 1 {
		return fmt.Errorf("defaults.alpha must be in (0,1), got %g", c.Defaults.Alpha)
	}
	if c.Defaults.WilsonZ <= 0 {
		return fmt.Errorf("defaults.wilson_z must be positive, got %g", c.Defaults.WilsonZ)
	}
	return nil
}
