package sim

import (
	"errors"
	"sync"
)

// ErrNotSelected is returned for SPI traffic while chip-select is high.
var ErrNotSelected = errors.New("sim: spi transfer without chip-select")

// Frame is one chip-select framed SPI transaction as seen by the chip.
type Frame struct {
	Out []byte // bytes clocked in from the controller
	In  []byte // bytes returned to the controller
}

// MAX31865 emulates the RTD converter register file behind an SPI bus
// and an active-low chip-select pin.
type MAX31865 struct {
	mu   sync.Mutex
	regs [8]byte
	cs   *Pin
	// Fail, when set, is returned from every transfer.
	Fail error

	selected bool
	addr     byte
	write    bool
	haveAddr bool
	cur      *Frame
	frames   []Frame
}

// NewMAX31865 returns a chip with its chip-select released.
func NewMAX31865() *MAX31865 {
	m := &MAX31865{cs: NewPin(-1, true)}
	m.cs.watch(m.onCS)
	return m
}

// CS returns the chip-select pin to hand to the driver.
func (m *MAX31865) CS() *Pin { return m.cs }

func (m *MAX31865) onCS(level bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !level {
		m.selected = true
		m.haveAddr = false
		m.cur = &Frame{}
		return
	}
	m.selected = false
	if m.cur != nil && len(m.cur.Out) > 0 {
		m.frames = append(m.frames, *m.cur)
	}
	m.cur = nil
}

// SetRaw loads a 15-bit RTD code; the fault flag bit 0 mirrors fault != 0.
func (m *MAX31865) SetRaw(code uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := code << 1
	if m.regs[7] != 0 {
		v |= 1
	}
	m.regs[1] = byte(v >> 8)
	m.regs[2] = byte(v)
}

// SetFault latches fault status bits.
func (m *MAX31865) SetFault(bits byte) {
	m.mu.Lock()
	m.regs[7] = bits
	m.mu.Unlock()
}

// SetFail makes every later transfer fail with err (nil restores).
func (m *MAX31865) SetFail(err error) {
	m.mu.Lock()
	m.Fail = err
	m.mu.Unlock()
}

// Register returns a register value.
func (m *MAX31865) Register(reg byte) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg&7]
}

// Frames returns the completed transactions.
func (m *MAX31865) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.frames...)
}

// ResetFrames clears the transaction log.
func (m *MAX31865) ResetFrames() {
	m.mu.Lock()
	m.frames = nil
	m.mu.Unlock()
}

// Tx implements drivers.SPI. A nil w clocks zeros; a nil r discards.
func (m *MAX31865) Tx(w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if !m.selected {
		return ErrNotSelected
	}
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	for i := 0; i < n; i++ {
		var out byte
		if i < len(w) {
			out = w[i]
		}
		in := m.clock(out)
		if i < len(r) {
			r[i] = in
		}
	}
	return nil
}

// Transfer implements drivers.SPI.
func (m *MAX31865) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := m.Tx([]byte{b}, r[:])
	return r[0], err
}

func (m *MAX31865) clock(out byte) byte {
	m.cur.Out = append(m.cur.Out, out)
	if !m.haveAddr {
		m.haveAddr = true
		m.write = out&0x80 != 0
		m.addr = out & 0x07
		m.cur.In = append(m.cur.In, 0)
		return 0
	}
	var in byte
	if m.write {
		m.writeReg(m.addr, out)
	} else {
		in = m.regs[m.addr]
	}
	m.addr = (m.addr + 1) & 0x07
	m.cur.In = append(m.cur.In, in)
	return in
}

// writeReg applies the writable registers. The fault-clear bit
// self-clears and resets the fault status.
func (m *MAX31865) writeReg(reg, v byte) {
	switch reg {
	case 0x00:
		if v&0x02 != 0 {
			m.regs[7] = 0
			m.regs[2] &^= 1
		}
		m.regs[0] = v &^ 0x02
	case 0x03, 0x04, 0x05, 0x06:
		m.regs[reg] = v
	}
}
