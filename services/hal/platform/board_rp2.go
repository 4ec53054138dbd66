//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"tinygo.org/x/drivers"

	"sensordash/services/config"
	"sensordash/x/logx"
)

type rp2I2C struct {
	bus      *machine.I2C
	sda, scl machine.Pin
}

type rp2SPI struct {
	bus           *machine.SPI
	sck, sdo, sdi machine.Pin
}

// Bus names accepted in the pico profile, on the reference wiring.
var (
	rp2I2CBuses = map[string]rp2I2C{
		"i2c0": {machine.I2C0, machine.GP0, machine.GP1},
		"i2c1": {machine.I2C1, machine.GP2, machine.GP3},
	}
	rp2SPIBuses = map[string]rp2SPI{
		"spi0": {machine.SPI0, machine.GP2, machine.GP3, machine.GP4},
		"spi1": {machine.SPI1, machine.GP10, machine.GP11, machine.GP12},
	}
)

// Open configures the RP2 peripherals named in cfg. Bad bus or pin names
// are logged and leave the matching field nil.
func Open(cfg config.Config, log logx.Logger) (*Board, error) {
	if log == nil {
		log = logx.Nop()
	}
	b := &Board{Name: cfg.Board}

	if cfg.HTU.Enabled {
		if i, ok := rp2I2CBuses[cfg.HTU.Bus]; !ok {
			log.Warnf("unknown i2c bus %q", cfg.HTU.Bus)
		} else if err := i.bus.Configure(machine.I2CConfig{
			Frequency: 100 * machine.KHz,
			SDA:       i.sda,
			SCL:       i.scl,
		}); err != nil {
			log.Warnf("i2c %s: %v", cfg.HTU.Bus, err)
		} else {
			b.I2C = i.bus
		}
	}

	if cfg.RTD.Enabled {
		s, ok := rp2SPIBuses[cfg.RTD.Bus]
		cs, okPin := rp2Pin(cfg.RTD.CSPin)
		switch {
		case !ok:
			log.Warnf("unknown spi bus %q", cfg.RTD.Bus)
		case !okPin:
			log.Warnf("bad chip-select pin %q", cfg.RTD.CSPin)
		default:
			cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
			cs.High()
			if err := s.bus.Configure(machine.SPIConfig{
				Frequency: cfg.RTD.BaudHz,
				Mode:      1,
				SCK:       s.sck,
				SDO:       s.sdo,
				SDI:       s.sdi,
			}); err != nil {
				log.Warnf("spi %s: %v", cfg.RTD.Bus, err)
			} else {
				var bus drivers.SPI = s.bus
				b.SPI, b.CS = bus, cs
			}
		}
	}

	if cfg.Button.Enabled {
		if p, ok := rp2Pin(cfg.Button.Pin); ok {
			p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
			b.Button = p
		} else {
			log.Warnf("bad button pin %q", cfg.Button.Pin)
		}
	}

	return b, nil
}

// rp2Pin maps a GP number to a machine pin. RP2 user GPIOs are GP0..GP28.
func rp2Pin(name string) (machine.Pin, bool) {
	n := pinNumber(name)
	if n < 0 || n > 28 {
		return machine.NoPin, false
	}
	return machine.Pin(n), true
}
