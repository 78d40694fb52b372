package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Decks struct {
		ManifestPath  string `yaml:"manifestPath"`
		CustomDeckDir string `yaml:"customDeckDir"`
		CachePages    int    `yaml:"cachePages"`
		MaxPerUser    int    `yaml:"maxPerUser"`
	} `yaml:"decks"`
	Fetch struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"fetch"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Timeout parses a duration string or returns the fallback if empty or bad.
func Timeout(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
