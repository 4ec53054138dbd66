// Package config holds the board configuration: which buses and pins the
// sensors sit on, RTD wiring, sampling cadence and the dashboard listener.
package config

import (
	"fmt"
	"time"

	"sensordash/errcode"
	"sensordash/x/mathx"
)

// Config is the full runtime configuration.
type Config struct {
	// Board selects the platform profile ("pico", "rpi", "sim").
	Board string `yaml:"board"`
	Debug bool   `yaml:"debug"`

	// LogDepth is the capacity of each rolling log.
	LogDepth int `yaml:"log_depth"`
	// SampleInterval triggers timer polls; zero disables the timer.
	SampleInterval time.Duration `yaml:"sample_interval"`

	Button ButtonConfig `yaml:"button"`
	HTU    HTUConfig    `yaml:"htu21d"`
	RTD    RTDConfig    `yaml:"max31865"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// ButtonConfig is the active-low refresh button.
type ButtonConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Pin      string        `yaml:"pin"`
	Debounce time.Duration `yaml:"debounce"`
	// Poll is how often the loop samples the input.
	Poll time.Duration `yaml:"poll"`
}

// HTUConfig locates the humidity sensor.
type HTUConfig struct {
	Enabled bool          `yaml:"enabled"`
	Bus     string        `yaml:"bus"`
	Address uint16        `yaml:"address"`
	Settle  time.Duration `yaml:"settle"`
}

// RTDConfig locates and describes the RTD converter.
type RTDConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Bus         string        `yaml:"bus"`
	CSPin       string        `yaml:"cs_pin"`
	BaudHz      uint32        `yaml:"baud_hz"`
	Nominal     float64       `yaml:"nominal"`
	RefResistor float64       `yaml:"ref_resistor"`
	Wires       int           `yaml:"wires"`
	Filter50Hz  bool          `yaml:"filter_50hz"`
	Settle      time.Duration `yaml:"settle"`
}

// HTTPConfig is the dashboard listener.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	// RequestTimeout bounds how long a page waits for the sampler.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Validate checks ranges that would otherwise surface as odd runtime
// behaviour.
func (c *Config) Validate() error {
	bad := func(msg string, a ...any) error {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config", Msg: fmt.Sprintf(msg, a...)}
	}
	if c.LogDepth <= 0 {
		return bad("log_depth must be positive, got %d", c.LogDepth)
	}
	if c.SampleInterval < 0 {
		return bad("sample_interval must not be negative")
	}
	if c.Button.Enabled {
		if c.Button.Pin == "" {
			return bad("button.pin is required")
		}
		if c.Button.Debounce < 0 || c.Button.Poll <= 0 {
			return bad("button debounce/poll out of range")
		}
	}
	if c.HTU.Enabled && c.HTU.Bus == "" {
		return bad("htu21d.bus is required")
	}
	if c.RTD.Enabled {
		if c.RTD.Bus == "" || c.RTD.CSPin == "" {
			return bad("max31865.bus and max31865.cs_pin are required")
		}
		if !mathx.Between(c.RTD.Wires, 2, 4) {
			return bad("max31865.wires must be 2, 3 or 4, got %d", c.RTD.Wires)
		}
		if c.RTD.Nominal <= 0 || c.RTD.RefResistor <= 0 {
			return bad("max31865 resistances must be positive")
		}
	}
	if c.HTTP.Enabled && c.HTTP.Listen == "" {
		return bad("http.listen is required")
	}
	return nil
}
