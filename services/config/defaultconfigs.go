package config

import "time"

// Built-in board profiles. Values follow the reference wiring: HTU21D on
// I2C, MAX31865 PT100 with a 430 Ω reference on SPI, button on GP15.

func base() Config {
	return Config{
		LogDepth: 20,
		Button: ButtonConfig{
			Enabled:  true,
			Debounce: 200 * time.Millisecond,
			Poll:     10 * time.Millisecond,
		},
		HTU: HTUConfig{
			Enabled: true,
			Address: 0x40,
			Settle:  50 * time.Millisecond,
		},
		RTD: RTDConfig{
			Enabled:     true,
			BaudHz:      1_000_000,
			Nominal:     100,
			RefResistor: 430,
			Wires:       2,
			Settle:      100 * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Enabled:        true,
			Listen:         ":450",
			RequestTimeout: 2 * time.Second,
		},
	}
}

var profiles = map[string]func() Config{
	"pico": func() Config {
		c := base()
		c.Board = "pico"
		c.Button.Pin = "15"
		c.HTU.Bus = "i2c0"
		c.RTD.Bus = "spi0"
		c.RTD.CSPin = "5"
		// No network stack on the core firmware.
		c.HTTP.Enabled = false
		return c
	},
	"rpi": func() Config {
		c := base()
		c.Board = "rpi"
		c.Button.Pin = "GPIO17"
		c.HTU.Bus = "/dev/i2c-1"
		c.RTD.Bus = "SPI0.0"
		c.RTD.CSPin = "GPIO8"
		c.SampleInterval = 30 * time.Second
		return c
	},
	"sim": func() Config {
		c := base()
		c.Board = "sim"
		c.Button.Pin = "15"
		c.HTU.Bus = "i2c0"
		c.RTD.Bus = "spi0"
		c.RTD.CSPin = "5"
		c.HTTP.Listen = "127.0.0.1:8450"
		c.SampleInterval = 5 * time.Second
		return c
	},
}

// Default returns the built-in profile for board. Unknown boards fall
// back to "sim" and ok is false.
func Default(board string) (cfg Config, ok bool) {
	p, ok := profiles[board]
	if !ok {
		return profiles["sim"](), false
	}
	return p(), true
}

// Boards lists the built-in profile names.
func Boards() []string { return []string{"pico", "rpi", "sim"} }
