package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the optional settings the CLI and service read from a
// YAML file. Zero fields fall back to the package defaults.
type Config struct {
	Listen string `yaml:"listen"`
	Store  string `yaml:"store"`
	Proto  string `yaml:"proto"`
}

func Default() Config {
	return Config{
		Listen: DefaultListenAddr,
		Store:  DefaultStorePath,
		Proto:  DefaultProtoPath,
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %v", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %v", path, err)
	}
	if file.Listen != "" {
		cfg.Listen = file.Listen
	}
	if file.Store != "" {
		cfg.Store = file.Store
	}
	if file.Proto != "" {
		cfg.Proto = file.Proto
	}
	return cfg, nil
}
