package sampler

import "sensordash/services/config"

// FromConfig extracts the loop timings from a board configuration.
func FromConfig(c config.Config) Config {
	cfg := Config{
		LogDepth: c.LogDepth,
		Interval: c.SampleInterval,
	}
	if c.Button.Enabled {
		cfg.Debounce = c.Button.Debounce
		cfg.ButtonPoll = c.Button.Poll
	}
	return cfg
}
