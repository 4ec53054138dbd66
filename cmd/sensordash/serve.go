//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"sensordash/bus"
	"sensordash/services/dashboard"
	"sensordash/services/heartbeat"
	"sensordash/services/sampler"
	"sensordash/x/logx"
)

// ServeAction runs the sampler and, when enabled, the dashboard until
// interrupted.
func ServeAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet(flagListen) {
		cfg.HTTP.Enabled = true
		cfg.HTTP.Listen = c.String(flagListen)
	}
	if c.IsSet(flagInterval) {
		cfg.SampleInterval = c.Duration(flagInterval)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logx.New("sensordash", cfg.Debug)
	log.Infof("board %s, log depth %d, interval %s", cfg.Board, cfg.LogDepth, cfg.SampleInterval)

	board, err := openBoard(cfg, log.Named("platform"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := board.Close(); cerr != nil {
			log.Warnf("close board: %v", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg.HTTP.Enabled, board.Sensors(cfg, log.Named("platform")), sampler.FromConfig(cfg),
		dashboard.Config{Listen: cfg.HTTP.Listen, RequestTimeout: cfg.HTTP.RequestTimeout}, log)
}

// serve runs the loop and the dashboard until ctx is done or either
// stops on its own.
func serve(ctx context.Context, withHTTP bool, deps sampler.Deps, scfg sampler.Config, dcfg dashboard.Config, log logx.Logger) error {
	b := bus.NewBus(8)
	deps.Conn = b.NewConnection("sampler")
	deps.Log = log.Named("sampler")
	s := sampler.New(scfg, deps)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	(&heartbeat.Service{Interval: time.Minute, Log: log.Named("heartbeat")}).Start(ctx, b.NewConnection("heartbeat"))

	errc := make(chan error, 2)
	n := 1
	go func() { errc <- s.Run(ctx) }()
	if withHTTP {
		n++
		d := dashboard.New(dcfg, b.NewConnection("dashboard"), log.Named("dashboard"))
		go func() { errc <- d.Serve(ctx) }()
	}

	var err error
	for i := 0; i < n; i++ {
		e := <-errc
		cancel()
		if e != nil && !errors.Is(e, context.Canceled) {
			err = multierr.Append(err, e)
		}
	}
	log.Infof("stopped")
	return err
}
