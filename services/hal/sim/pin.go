// Package sim provides in-memory buses, pins and sensor emulators for
// host builds and tests.
package sim

import "sync"

// Pin is a simulated digital pin. It serves as chip-select output and as
// button input.
type Pin struct {
	mu       sync.RWMutex
	number   int
	level    bool
	onChange func(level bool)
}

// NewPin returns a pin at the given initial level.
func NewPin(number int, level bool) *Pin {
	return &Pin{number: number, level: level}
}

func (p *Pin) Number() int { return p.number }
func (p *Pin) High()       { p.Set(true) }
func (p *Pin) Low()        { p.Set(false) }

// Set drives the level and notifies the change hook on a transition.
func (p *Pin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	cb := p.onChange
	p.mu.Unlock()
	if cb != nil && old != level {
		cb(level)
	}
}

func (p *Pin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

// Press pulls an active-low button input low; Release lets it float high.
func (p *Pin) Press()   { p.Low() }
func (p *Pin) Release() { p.High() }

func (p *Pin) watch(fn func(level bool)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}
