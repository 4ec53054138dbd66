package sim

import (
	"errors"
	"sync"
)

// ErrNack is returned for transfers to an address nobody answers on.
var ErrNack = errors.New("sim: i2c nack")

// I2CTx is one recorded I2C transaction.
type I2CTx struct {
	Addr uint16
	W    []byte
	Rn   int
}

// HTU21D emulates the humidity sensor on its own I2C bus. Reads return
// the raw word for the last measurement command.
type HTU21D struct {
	mu      sync.Mutex
	Addr    uint16
	RawTemp uint16
	RawHum  uint16
	// Fail, when set, is returned from every transaction.
	Fail error

	pending byte
	log     []I2CTx
}

// NewHTU21D answers on 0x40 with roughly 22.6 °C and 47.7 %RH.
func NewHTU21D() *HTU21D {
	return &HTU21D{Addr: 0x40, RawTemp: 0x6540, RawHum: 0x6E00}
}

// SetRaw sets the temperature and humidity words.
func (h *HTU21D) SetRaw(temp, hum uint16) {
	h.mu.Lock()
	h.RawTemp, h.RawHum = temp, hum
	h.mu.Unlock()
}

// SetFail makes every later transaction fail with err (nil restores).
func (h *HTU21D) SetFail(err error) {
	h.mu.Lock()
	h.Fail = err
	h.mu.Unlock()
}

// Tx implements drivers.I2C.
func (h *HTU21D) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = append(h.log, I2CTx{Addr: addr, W: append([]byte(nil), w...), Rn: len(r)})
	if h.Fail != nil {
		return h.Fail
	}
	if addr != h.Addr {
		return ErrNack
	}
	if len(w) > 0 {
		h.pending = w[0]
	}
	if len(r) == 0 {
		return nil
	}
	var v uint16
	switch h.pending {
	case 0xF3, 0xE3:
		v = h.RawTemp
	case 0xF5, 0xE5:
		v = h.RawHum
	default:
		return ErrNack
	}
	r[0] = byte(v >> 8)
	if len(r) > 1 {
		r[1] = byte(v)
	}
	return nil
}

// Log returns a copy of the recorded transactions.
func (h *HTU21D) Log() []I2CTx {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]I2CTx(nil), h.log...)
}
