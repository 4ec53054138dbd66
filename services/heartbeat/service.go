// Package heartbeat publishes periodic runtime health: uptime, poll count
// and heap figures. On the firmware it is the only sign of life on the
// console between button presses.
package heartbeat

import (
	"context"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"

	"sensordash/bus"
	"sensordash/x/logx"
)

var (
	// TopicConfig accepts a time.Duration that replaces the interval.
	TopicConfig = bus.T("config", "heartbeat")
	// TopicStatus carries the latest Status, retained.
	TopicStatus = bus.T("heartbeat", "status")
)

// Status is one heartbeat.
type Status struct {
	At        time.Time     `json:"at"`
	Uptime    time.Duration `json:"uptime"`
	HeapAlloc uint64        `json:"heap_alloc"`
	HeapInuse uint64        `json:"heap_inuse"`
	Mallocs   uint64        `json:"mallocs"`
	Frees     uint64        `json:"frees"`
}

// Service publishes Status on TopicStatus.
type Service struct {
	// Interval between beats. Default 30 s.
	Interval time.Duration
	Clock    clock.Clock
	Log      logx.Logger
}

// Start runs the service in its own goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go func() { _ = s.Run(ctx, conn) }()
}

// Run publishes a status immediately, then on every tick and after every
// interval change, until ctx is done.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) error {
	clk, log := s.Clock, s.Log
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logx.Nop()
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfgSub := conn.Subscribe(TopicConfig)
	defer conn.Unsubscribe(cfgSub)

	tick := clk.Ticker(interval)
	defer tick.Stop()

	start := clk.Now()
	beat := func() {
		st := sample(clk.Now(), start)
		log.Debugf("uptime %s heap %d/%d mallocs %d frees %d",
			st.Uptime.Truncate(time.Second), st.HeapInuse, st.HeapAlloc, st.Mallocs, st.Frees)
		conn.Publish(conn.NewMessage(TopicStatus, st, true))
	}
	beat()

	for {
		select {
		case <-ctx.Done():
			log.Debugf("heartbeat stopping")
			return ctx.Err()
		case <-tick.C:
			beat()
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return nil
			}
			d, ok := msg.Payload.(time.Duration)
			if !ok || d <= 0 {
				log.Warnf("ignoring heartbeat config %v", msg.Payload)
				continue
			}
			tick.Reset(d)
			log.Infof("heartbeat interval set to %s", d)
			beat()
		}
	}
}

func sample(now, start time.Time) Status {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Status{
		At:        now,
		Uptime:    now.Sub(start),
		HeapAlloc: ms.HeapAlloc,
		HeapInuse: ms.HeapInuse,
		Mallocs:   ms.Mallocs,
		Frees:     ms.Frees,
	}
}
