// Package max31865 provides a driver for the MAX31865 RTD-to-digital
// converter on an SPI bus with a GPIO chip-select.
//
// Every register access is one chip-select framed transaction: CS is
// pulled low, the address byte (bit 7 set for writes) and data are
// clocked, CS is released. Transactions on one Device are serialised.
package max31865

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"sensordash/errcode"
	"sensordash/types"
	"sensordash/x/mathx"
)

// Pin is the chip-select output. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// DefaultSettle is the wait after configuration for the first conversion.
const DefaultSettle = 100 * time.Millisecond

// Errors returned by the driver.
var (
	ErrTransport     = &errcode.E{C: errcode.TransportFailure, Op: "max31865", Msg: "bus transfer failed"}
	ErrSensorFault   = &errcode.E{C: errcode.SensorFault, Op: "max31865", Msg: "rtd fault"}
	ErrShortCircuit  = fmt.Errorf("%w: short circuit", ErrSensorFault)
	ErrOpenCircuit   = fmt.Errorf("%w: open circuit", ErrSensorFault)
	ErrInvalidConfig = &errcode.E{C: errcode.InvalidConfig, Op: "max31865", Msg: "invalid config"}
)

// Config is fixed for the life of a Device.
type Config struct {
	// Nominal RTD resistance at 0 °C in ohms (100 for PT100).
	Nominal float64
	// Reference resistor in ohms.
	RefResistor float64
	// Wires is 2, 3 or 4.
	Wires int
	// Filter50Hz selects the 50 Hz notch filter instead of 60 Hz.
	Filter50Hz bool

	// Settle is the wait after Configure. Default 100 ms.
	Settle time.Duration
	// Delay performs the settle wait. Default time.Sleep.
	Delay func(time.Duration)
}

// DefaultConfig is a 2-wire PT100 with a 430 Ω reference.
func DefaultConfig() Config {
	return Config{Nominal: 100, RefResistor: 430, Wires: 2}
}

// Validate checks the fields used by the conversion and wiring bit.
func (c Config) Validate() error {
	if c.Nominal <= 0 {
		return fmt.Errorf("%w: nominal resistance must be positive", ErrInvalidConfig)
	}
	if c.RefResistor <= 0 {
		return fmt.Errorf("%w: reference resistor must be positive", ErrInvalidConfig)
	}
	switch c.Wires {
	case 2, 3, 4:
	default:
		return fmt.Errorf("%w: wires must be 2, 3 or 4, got %d", ErrInvalidConfig, c.Wires)
	}
	return nil
}

// configBits is the configuration register value written at start-up.
func (c Config) configBits() byte {
	v := byte(cfgBias | cfgAutoConvert | cfgFaultClear)
	if c.Wires == 3 {
		v |= cfg3Wire
	}
	if c.Filter50Hz {
		v |= cfgFilter50Hz
	}
	return v
}

// Device is a MAX31865 behind an SPI bus and a chip-select pin.
type Device struct {
	mu  sync.Mutex
	spi drivers.SPI
	cs  Pin
	cfg Config

	w [2]byte
	r [2]byte
}

// New validates cfg and returns a Device. The chip is not touched.
func New(spi drivers.SPI, cs Pin, cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if cfg.Delay == nil {
		cfg.Delay = time.Sleep
	}
	return &Device{spi: spi, cs: cs, cfg: cfg}, nil
}

// Config returns the configuration in use.
func (d *Device) Config() Config { return d.cfg }

// Configure releases chip-select, writes the configuration register and
// waits for the first conversion.
func (d *Device) Configure() error {
	if err := d.configureLocked(); err != nil {
		return err
	}
	d.cfg.Delay(d.cfg.Settle)
	return nil
}

func (d *Device) configureLocked() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cs.High()
	return d.writeLocked(regConfig, d.cfg.configBits())
}

// ReadRaw returns the 15-bit RTD code. The fault flag in bit 0 of the
// LSB register is discarded.
func (d *Device) ReadRaw() (uint16, error) {
	b, err := d.readRegisters(regRTDMSB, 2)
	if err != nil {
		return 0, err
	}
	return (uint16(b[0])<<8 | uint16(b[1])) >> 1, nil
}

// ReadTemperature converts the current RTD code to °C. A short (code 0)
// or open (code 32767) circuit yields an absent reading and ErrSensorFault.
func (d *Device) ReadTemperature() (types.Reading, error) {
	raw, err := d.ReadRaw()
	if err != nil {
		return types.None(), err
	}
	switch raw {
	case rawShort:
		return types.None(), ErrShortCircuit
	case rawOpen:
		return types.None(), ErrOpenCircuit
	}
	return types.Some(Celsius(Resistance(raw, d.cfg.RefResistor))), nil
}

// ReadFault returns the fault status register as read.
func (d *Device) ReadFault() (Fault, error) {
	b, err := d.readRegisters(regFaultStatus, 1)
	if err != nil {
		return 0, err
	}
	return Fault(b[0]), nil
}

// ClearFault sets the fault-clear bit in the configuration register,
// preserving the other bits. The read and write happen under one lock.
func (d *Device) ClearFault() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.readLocked(regConfig, 1)
	if err != nil {
		return err
	}
	return d.writeLocked(regConfig, b[0]|cfgFaultClear)
}

// Resistance converts a 15-bit code to ohms.
func Resistance(raw uint16, ref float64) float64 {
	return float64(raw) * ref / 32768.0
}

// Celsius is the cubic Callendar-Van Dusen approximation for a PT100.
// Inputs outside the sensor range are converted without checks.
func Celsius(r float64) float64 {
	return mathx.Horner(r, -242.02, 2.2228, 2.5859e-3, -4.8260e-6)
}

func (d *Device) readRegisters(reg byte, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readLocked(reg, n)
}

func (d *Device) writeLocked(reg, val byte) error {
	d.w[0] = reg | writeBit
	d.w[1] = val
	d.cs.Low()
	err := d.spi.Tx(d.w[:2], nil)
	d.cs.High()
	if err != nil {
		return fmt.Errorf("%w: write 0x%02X: %w", ErrTransport, reg, err)
	}
	return nil
}

// readLocked returns a slice of the device read buffer; n <= 2.
func (d *Device) readLocked(reg byte, n int) ([]byte, error) {
	if n > len(d.r) {
		return nil, errors.New("max31865: read too long")
	}
	d.w[0] = reg & readMask
	d.cs.Low()
	err := d.spi.Tx(d.w[:1], nil)
	if err == nil {
		err = d.spi.Tx(nil, d.r[:n])
	}
	d.cs.High()
	if err != nil {
		return nil, fmt.Errorf("%w: read 0x%02X: %w", ErrTransport, reg, err)
	}
	return d.r[:n], nil
}
