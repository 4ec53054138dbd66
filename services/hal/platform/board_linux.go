//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"sensordash/errcode"
	"sensordash/services/config"
	"sensordash/x/logx"
)

// Open brings up the Linux buses named in cfg through periph.io. A bus or
// pin that cannot be opened is logged and left nil so the matching sensor
// is reported unavailable; only host initialisation is fatal.
func Open(cfg config.Config, log logx.Logger) (*Board, error) {
	if log == nil {
		log = logx.Nop()
	}
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "platform", errors.Wrap(err, "periph host init"))
	}
	b := &Board{Name: cfg.Board}

	if cfg.HTU.Enabled {
		bus, err := i2creg.Open(cfg.HTU.Bus)
		if err != nil {
			log.Warnf("i2c %q: %v", cfg.HTU.Bus, err)
		} else {
			b.I2C = bus
			b.onClose(bus.Close)
		}
	}

	if cfg.RTD.Enabled {
		if err := b.openSPI(cfg.RTD); err != nil {
			log.Warnf("spi %q: %v", cfg.RTD.Bus, err)
		}
	}

	if cfg.Button.Enabled {
		p := gpioreg.ByName(cfg.Button.Pin)
		switch {
		case p == nil:
			log.Warnf("button pin %q not found", cfg.Button.Pin)
		default:
			if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
				log.Warnf("button pin %q: %v", cfg.Button.Pin, err)
			} else {
				b.Button = periphPin{p}
			}
		}
	}
	return b, nil
}

func (b *Board) openSPI(c config.RTDConfig) error {
	p := gpioreg.ByName(c.CSPin)
	if p == nil {
		return fmt.Errorf("chip-select pin %q not found", c.CSPin)
	}
	if err := p.Out(gpio.High); err != nil {
		return errors.Wrapf(err, "chip-select %s", c.CSPin)
	}
	port, err := spireg.Open(c.Bus)
	if err != nil {
		return err
	}
	// The driver frames chip-select itself, so the kernel must not.
	conn, err := port.Connect(physic.Frequency(c.BaudHz)*physic.Hertz, spi.Mode1|spi.NoCS, 8)
	if err != nil {
		_ = port.Close()
		return errors.Wrap(err, "connect")
	}
	b.SPI = &periphSPI{c: conn}
	b.CS = periphPin{p}
	b.onClose(port.Close)
	return nil
}

// periphPin adapts a periph GPIO to the driver pin contracts.
type periphPin struct{ p gpio.PinIO }

func (p periphPin) High()     { _ = p.p.Out(gpio.High) }
func (p periphPin) Low()      { _ = p.p.Out(gpio.Low) }
func (p periphPin) Get() bool { return p.p.Read() == gpio.High }

// periphSPI adapts spi.Conn to drivers.SPI. periph wants equal-length
// buffers, so half-duplex transfers are padded.
type periphSPI struct {
	c   spi.Conn
	buf [2][]byte
}

func (s *periphSPI) Tx(w, r []byte) error {
	n := max(len(w), len(r))
	if n == 0 {
		return nil
	}
	if len(w) == n && len(r) == n {
		return s.c.Tx(w, r)
	}
	out, in := s.scratch(0, n), s.scratch(1, n)
	clear(out)
	copy(out, w)
	if err := s.c.Tx(out, in); err != nil {
		return err
	}
	copy(r, in)
	return nil
}

func (s *periphSPI) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := s.c.Tx([]byte{b}, r[:])
	return r[0], err
}

func (s *periphSPI) scratch(i, n int) []byte {
	if cap(s.buf[i]) < n {
		s.buf[i] = make([]byte, n)
	}
	return s.buf[i][:n]
}
