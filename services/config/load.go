//go:build !(rp2040 || rp2350)

package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file on top of the profile named by board. The file
// may override the board itself. A missing file yields the profile.
func Load(path, board string) (Config, error) {
	cfg, _ := Default(board)
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return Config{}, errors.Wrapf(err, "read config %q", path)
	}
	return Parse(data, board)
}

// Parse decodes YAML on top of a board profile.
func Parse(data []byte, board string) (Config, error) {
	var head struct {
		Board string `yaml:"board"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if head.Board != "" {
		board = head.Board
	}
	cfg, ok := Default(board)
	if !ok {
		return Config{}, errors.Errorf("unknown board %q", board)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}
