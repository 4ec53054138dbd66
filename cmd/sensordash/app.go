//go:build !(rp2040 || rp2350)

package main

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"sensordash/services/config"
	"sensordash/services/hal/platform"
	"sensordash/x/logx"
)

const (
	flagConfig   = "config"
	flagBoard    = "board"
	flagSim      = "sim"
	flagDebug    = "debug"
	flagListen   = "listen"
	flagInterval = "interval"
	flagCount    = "count"
	flagEvery    = "every"
)

// NewApp returns the CLI writing command output to out and errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "sensordash",
		Usage:     "sample HTU21D and MAX31865 sensors and serve a dashboard",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagBoard,
				Value: "sim",
				Usage: "board profile: " + strings.Join(config.Boards(), ", "),
			},
			&cli.BoolFlag{
				Name:  flagSim,
				Usage: "use emulated sensors regardless of the configured board",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the sampling loop and the HTTP dashboard",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagListen,
						Usage: "dashboard listen address (overrides config)",
					},
					&cli.DurationFlag{
						Name:  flagInterval,
						Usage: "timer poll period, 0 disables (overrides config)",
					},
				},
				Action: ServeAction,
			},
			{
				Name:  "read",
				Usage: "poll the sensors and print a table",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagCount,
						Value: 1,
						Usage: "number of polls",
					},
					&cli.DurationFlag{
						Name:  flagEvery,
						Value: time.Second,
						Usage: "delay between polls",
					},
				},
				Action: ReadAction,
			},
		},
	}
}

// loadConfig resolves the configuration from the global flags.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig), c.String(flagBoard))
	if err != nil {
		return config.Config{}, err
	}
	if c.Bool(flagSim) {
		cfg.Board = "sim"
	}
	if c.Bool(flagDebug) {
		cfg.Debug = true
	}
	return cfg, nil
}

// openBoard opens the simulated or hardware platform for cfg.
func openBoard(cfg config.Config, log logx.Logger) (*platform.Board, error) {
	if cfg.Board == "sim" {
		b, _ := platform.OpenSim(cfg)
		return b, nil
	}
	b, err := platform.Open(cfg, log)
	if err != nil {
		return nil, errors.Wrapf(err, "open board %s", cfg.Board)
	}
	return b, nil
}
