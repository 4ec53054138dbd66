//go:build rp2040 || rp2350

// Firmware for a Pico wired with an HTU21D on i2c0 (GP0/GP1), a MAX31865
// on spi0 (GP2..GP4, CS GP5) and a button on GP15. Logs go to UART0 on
// GP16/GP17 at 115200 baud.
package main

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"sensordash/bus"
	"sensordash/services/config"
	"sensordash/services/hal/platform"
	"sensordash/services/heartbeat"
	"sensordash/services/sampler"
	"sensordash/types"
	"sensordash/x/logx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP16,
		RX:       machine.GP17,
	})
	logx.Output = uartx.UART0
	log := logx.New("sensordash", false)

	cfg, _ := config.Default("pico")
	board, err := platform.Open(cfg, log.Named("platform"))
	if err != nil {
		println("[main] platform:", err.Error())
		return
	}

	println("[main] bootstrapping bus …")
	b := bus.NewBus(4)
	deps := board.Sensors(cfg, log.Named("platform"))
	deps.Conn = b.NewConnection("sampler")
	deps.Log = log.Named("sampler")
	s := sampler.New(sampler.FromConfig(cfg), deps)

	ui := b.NewConnection("ui")
	mon := ui.Subscribe(sampler.TopicReadings)
	go func() {
		for m := range mon.Channel() {
			if r, ok := m.Payload.(types.Readings); ok {
				printReadings(r)
			}
		}
	}()

	hb := b.NewConnection("heartbeat")
	(&heartbeat.Service{Log: log.Named("heartbeat")}).Start(context.Background(), hb)
	beats := ui.Subscribe(heartbeat.TopicStatus)
	go func() {
		for m := range beats.Channel() {
			if st, ok := m.Payload.(heartbeat.Status); ok {
				printStatus(st)
			}
		}
	}()

	println("[main] starting sampler")
	_ = s.Run(context.Background())
}

// printReadings mirrors each poll on the USB console.
func printReadings(r types.Readings) {
	println("[poll]", string(r.Reason),
		"htu:", r.HTUTemp.String(),
		"rh:", r.Humidity.String(),
		"rtd:", r.RTDTemp.String())
}

// printStatus prints a compact heartbeat without going through fmt.
func printStatus(st heartbeat.Status) {
	println(
		"[mem]",
		"uptime:", uint32(st.Uptime/time.Second),
		"alloc:", uint32(st.HeapAlloc),
		"heapInuse:", uint32(st.HeapInuse),
		"mallocs:", uint32(st.Mallocs),
		"frees:", uint32(st.Frees),
	)
}
