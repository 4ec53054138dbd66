//go:build !(rp2040 || rp2350)

package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"sensordash/drivers/max31865"
	"sensordash/services/dashboard"
	"sensordash/services/sampler"
	"sensordash/types"
	"sensordash/x/logx"
)

// ReadAction polls the sensors --count times and prints the results.
func ReadAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := logx.New("sensordash", cfg.Debug)
	board, err := openBoard(cfg, log.Named("platform"))
	if err != nil {
		return err
	}
	defer board.Close()

	cfg.LogDepth = max(cfg.LogDepth, c.Int(flagCount))
	s := sampler.New(sampler.FromConfig(cfg), board.Sensors(cfg, log.Named("platform")))

	count := max(c.Int(flagCount), 1)
	polls := make([]types.Readings, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			time.Sleep(c.Duration(flagEvery))
		}
		polls = append(polls, s.PollAndRecord(types.ReasonRefresh))
	}
	fmt.Fprintln(c.App.Writer, readingsTable(polls, s.Snapshots()))
	return nil
}

// readingsTable renders one row per poll. With more than one poll a
// footer carries the mean of each channel's log.
func readingsTable(polls []types.Readings, hist types.Snapshot) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Time", "HTU °C", "RH %", "RTD °C", "Fault"})
	for i, r := range polls {
		t.AppendRow(table.Row{
			i + 1,
			r.At.Format("15:04:05"),
			cell(r, types.ChanHTUTemp),
			cell(r, types.ChanHumidity),
			cell(r, types.ChanRTDTemp),
			max31865.Fault(r.Fault).String(),
		})
	}
	if len(polls) > 1 {
		st := dashboard.SummarizeAll(hist)
		t.AppendFooter(table.Row{"", "mean",
			st[types.ChanHTUTemp].Mean.Format(2),
			st[types.ChanHumidity].Mean.Format(2),
			st[types.ChanRTDTemp].Mean.Format(2),
			"",
		})
	}
	return t.Render()
}

// cell renders a reading, with the error code next to N/A.
func cell(r types.Readings, ch types.Channel) string {
	v := r.Get(ch)
	if v.Valid {
		return v.Format(2)
	}
	if code, ok := r.Errors[ch]; ok {
		return types.NotAvailable + " (" + code + ")"
	}
	return types.NotAvailable
}
