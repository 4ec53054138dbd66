// Package htu21d provides a driver for the HTU21D (and Si7021-compatible)
// temperature/humidity sensor.
//
// Each read issues a hold-master measurement command, waits a fixed settle
// delay for the conversion to finish and then reads the 16-bit result:
//
//	d := htu21d.New(bus)
//	t, err := d.ReadTemperature()
//
// The two low status bits of the measurement word are not masked before
// conversion.
package htu21d

import (
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"sensordash/errcode"
)

// I2C address.
const Address = 0x40

// Commands.
const (
	CmdTemperature = 0xF3
	CmdHumidity    = 0xF5
	cmdSoftReset   = 0xFE
)

// DefaultSettle is the wait between a measurement command and the read.
const DefaultSettle = 50 * time.Millisecond

// ErrSensorUnavailable wraps every bus failure returned by the driver.
var ErrSensorUnavailable = &errcode.E{C: errcode.TransportFailure, Op: "htu21d", Msg: "sensor unavailable"}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x40 if zero.
	Address uint16
	// Settle is the conversion wait. Default 50 ms.
	Settle time.Duration
	// Delay performs the settle wait. Default time.Sleep.
	Delay func(time.Duration)
}

// Device wraps an I2C connection to an HTU21D device.
type Device struct {
	mu     sync.Mutex
	bus    drivers.I2C
	addr   uint16
	settle time.Duration
	delay  func(time.Duration)

	w [1]byte
	r [2]byte
}

// New creates a driver. The bus must already be configured; the device is
// not touched.
func New(bus drivers.I2C, cfgs ...Config) *Device {
	d := &Device{
		bus:    bus,
		addr:   Address,
		settle: DefaultSettle,
		delay:  time.Sleep,
	}
	if len(cfgs) > 0 {
		c := cfgs[0]
		if c.Address != 0 {
			d.addr = c.Address
		}
		if c.Settle > 0 {
			d.settle = c.Settle
		}
		if c.Delay != nil {
			d.delay = c.Delay
		}
	}
	return d
}

// Address returns the 7-bit bus address in use.
func (d *Device) Address() uint16 { return d.addr }

// Probe issues a soft reset. It fails when nothing acknowledges on the
// address, which is how a missing sensor is detected at start-up.
func (d *Device) Probe() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.w[0] = cmdSoftReset
	if err := d.bus.Tx(d.addr, d.w[:1], nil); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrSensorUnavailable, err)
	}
	// Reset takes up to 15 ms.
	d.delay(15 * time.Millisecond)
	return nil
}

// ReadRaw triggers the measurement selected by cmd and returns the
// big-endian 16-bit result as read from the device.
func (d *Device) ReadRaw(cmd byte) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.w[0] = cmd
	if err := d.bus.Tx(d.addr, d.w[:1], nil); err != nil {
		return 0, fmt.Errorf("%w: command 0x%02X: %w", ErrSensorUnavailable, cmd, err)
	}
	d.delay(d.settle)
	if err := d.bus.Tx(d.addr, nil, d.r[:]); err != nil {
		return 0, fmt.Errorf("%w: read 0x%02X: %w", ErrSensorUnavailable, cmd, err)
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

// ReadTemperature returns the temperature in °C.
func (d *Device) ReadTemperature() (float64, error) {
	raw, err := d.ReadRaw(CmdTemperature)
	if err != nil {
		return 0, err
	}
	return Celsius(raw), nil
}

// ReadHumidity returns relative humidity in percent.
func (d *Device) ReadHumidity() (float64, error) {
	raw, err := d.ReadRaw(CmdHumidity)
	if err != nil {
		return 0, err
	}
	return RelHumidity(raw), nil
}

// Celsius converts a raw temperature word.
func Celsius(raw uint16) float64 {
	return -46.85 + 175.72*float64(raw)/65536.0
}

// RelHumidity converts a raw humidity word.
func RelHumidity(raw uint16) float64 {
	return -6.0 + 125.0*float64(raw)/65536.0
}
