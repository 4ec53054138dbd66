//go:build !(rp2040 || rp2350)

// Command sensordash samples the HTU21D and MAX31865 sensors and serves
// the dashboard.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sensordash:", err)
		os.Exit(1)
	}
}
