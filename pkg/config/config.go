package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Dynamic DynamicConfig `yaml:"dynamic"`
}

type IndexConfig struct {
	Epsilon          int `yaml:"epsilon"`
	EpsilonRecursive int `yaml:"epsilon_recursive"`
}

type DynamicConfig struct {
	BaseCapacity    int `yaml:"base_capacity"`
	MinIndexedLevel int `yaml:"min_indexed_level"`
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Index: IndexConfig{
			Epsilon:          64,
			EpsilonRecursive: 4,
		},
		Dynamic: DynamicConfig{
			BaseCapacity:    256,
			MinIndexedLevel: 2,
		},
	}

	if configPath == "" {
		for _, p := range []string{"configs/neuro.yaml", "neuro.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Index.Epsilon < 0 {
		cfg.Index.Epsilon = 64
	}
	if cfg.Index.EpsilonRecursive < 0 {
		cfg.Index.EpsilonRecursive = 4
	}
	if cfg.Dynamic.BaseCapacity <= 0 {
		cfg.Dynamic.BaseCapacity = 256
	}
	if cfg.Dynamic.MinIndexedLevel <= 0 {
		cfg.Dynamic.MinIndexedLevel = 2
	}
}
