package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the command-line flags; a YAML file sets defaults and flags
// given explicitly on the command line win.
type Config struct {
	APIAddr     string `yaml:"api_addr"`
	MonAddr     string `yaml:"monitoring_addr"`
	FeedURL     string `yaml:"feed_url"`
	SubmitURL   string `yaml:"submit_url"`
	JournalPath string `yaml:"journal_path"`
	HistoryPath string `yaml:"history_path"`
}

func defaultConfig() Config {
	return Config{
		APIAddr: "127.0.0.1:4700",
		MonAddr: "127.0.0.1:4720",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
