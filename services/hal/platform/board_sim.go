//go:build !(rp2040 || rp2350)

package platform

import (
	"time"

	"sensordash/services/config"
	"sensordash/services/hal/sim"
)

// Sim exposes the emulated chips behind a simulated board so callers can
// steer readings, inject faults and press the button.
type Sim struct {
	HTU    *sim.HTU21D
	RTD    *sim.MAX31865
	Button *sim.Pin
}

// OpenSim builds a board backed by emulators. The RTD code starts near
// room temperature and the button is released.
func OpenSim(cfg config.Config) (*Board, *Sim) {
	s := &Sim{
		HTU:    sim.NewHTU21D(),
		RTD:    sim.NewMAX31865(),
		Button: sim.NewPin(pinNumber(cfg.Button.Pin), true),
	}
	if cfg.HTU.Address != 0 {
		s.HTU.Addr = cfg.HTU.Address
	}
	// ≈108.8 Ω with a 430 Ω reference, about 24.2 °C on a PT100.
	s.RTD.SetRaw(8290)

	b := &Board{
		Name:   "sim",
		I2C:    s.HTU,
		SPI:    s.RTD,
		CS:     s.RTD.CS(),
		Button: s.Button,
		// Emulators convert instantly.
		Delay: func(time.Duration) {},
	}
	return b, s
}
