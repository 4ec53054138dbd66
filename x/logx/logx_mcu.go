//go:build rp2040 || rp2350

package logx

import (
	"fmt"
	"io"
)

// Output receives log lines on MCU builds. Set it from the board
// bootstrap, e.g. to a UART.
var Output io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// New returns a line logger writing to Output.
func New(name string, debug bool) Logger {
	return lineLogger{name: name, debug: debug}
}

type lineLogger struct {
	name  string
	debug bool
}

func (l lineLogger) emit(level, format string, a []any) {
	fmt.Fprintf(Output, "%s\t%s\t%s\r\n", level, l.name, fmt.Sprintf(format, a...))
}

func (l lineLogger) Debugf(f string, a ...any) {
	if l.debug {
		l.emit("DEBUG", f, a)
	}
}
func (l lineLogger) Infof(f string, a ...any)  { l.emit("INFO", f, a) }
func (l lineLogger) Warnf(f string, a ...any)  { l.emit("WARN", f, a) }
func (l lineLogger) Errorf(f string, a ...any) { l.emit("ERROR", f, a) }
func (l lineLogger) Named(n string) Logger {
	return lineLogger{name: l.name + "." + n, debug: l.debug}
}
