// Package platform opens the buses and pins a board profile names and
// brings up the sensor drivers on them.
package platform

import (
	"time"

	"go.uber.org/multierr"
	"tinygo.org/x/drivers"

	"sensordash/drivers/htu21d"
	"sensordash/drivers/max31865"
	"sensordash/errcode"
	"sensordash/services/config"
	"sensordash/services/sampler"
	"sensordash/x/logx"
)

// OutputPin drives a chip-select line.
type OutputPin interface {
	High()
	Low()
}

// InputPin reads a digital level.
type InputPin interface {
	Get() bool
}

// Board holds the transports for one configuration. Any field may be nil
// when the corresponding peripheral is disabled or failed to open.
type Board struct {
	Name   string
	I2C    drivers.I2C
	SPI    drivers.SPI
	CS     OutputPin
	Button InputPin

	// Delay replaces the drivers' settle sleep; nil uses time.Sleep.
	Delay func(time.Duration)

	closers []func() error
}

func (b *Board) onClose(fn func() error) { b.closers = append(b.closers, fn) }

// Close releases every handle, returning all errors combined.
func (b *Board) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}
	b.closers = nil
	return err
}

// Sensors initialises the drivers the board supports. A driver whose bus is
// missing or whose initialisation fails is left nil in the returned deps
// and reported once in the log; it is not retried.
func (b *Board) Sensors(cfg config.Config, log logx.Logger) sampler.Deps {
	if log == nil {
		log = logx.Nop()
	}
	var d sampler.Deps
	if htu, err := b.openHTU(cfg.HTU); err != nil {
		log.Warnf("htu21d init: %v", err)
	} else if htu != nil {
		d.HTU = htu
	}
	if rtd, err := b.openRTD(cfg.RTD); err != nil {
		log.Warnf("max31865 init: %v", err)
	} else if rtd != nil {
		d.RTD = rtd
	}
	if cfg.Button.Enabled && b.Button != nil {
		d.Button = b.Button
	}
	return d
}

func (b *Board) openHTU(c config.HTUConfig) (*htu21d.Device, error) {
	if !c.Enabled {
		return nil, nil
	}
	if b.I2C == nil {
		return nil, &errcode.E{C: errcode.DriverUnavailable, Op: "htu21d", Msg: "no i2c bus " + c.Bus}
	}
	dev := htu21d.New(b.I2C, htu21d.Config{Address: c.Address, Settle: c.Settle, Delay: b.Delay})
	if err := dev.Probe(); err != nil {
		return nil, errcode.Wrap(errcode.DriverUnavailable, "htu21d", err)
	}
	return dev, nil
}

func (b *Board) openRTD(c config.RTDConfig) (*max31865.Device, error) {
	if !c.Enabled {
		return nil, nil
	}
	if b.SPI == nil || b.CS == nil {
		return nil, &errcode.E{C: errcode.DriverUnavailable, Op: "max31865", Msg: "no spi bus " + c.Bus}
	}
	dev, err := max31865.New(b.SPI, b.CS, max31865.Config{
		Nominal:     c.Nominal,
		RefResistor: c.RefResistor,
		Wires:       c.Wires,
		Filter50Hz:  c.Filter50Hz,
		Settle:      c.Settle,
		Delay:       b.Delay,
	})
	if err != nil {
		return nil, err
	}
	if err := dev.Configure(); err != nil {
		return nil, errcode.Wrap(errcode.DriverUnavailable, "max31865", err)
	}
	return dev, nil
}
