// Package logx is the logging facade used across the firmware. Host builds
// log through zap; MCU builds write plain lines to a configurable writer.
package logx

// Logger is the subset of a sugared logger the services need.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Named(name string) Logger
}

// Nop returns a logger that drops everything.
func Nop() Logger { return nop{} }

type nop struct{}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}
func (n nop) Named(string) Logger { return n }
