package sampler

import (
	"context"
	"errors"
	"time"

	"sensordash/bus"
	"sensordash/errcode"
	"sensordash/types"
)

// Run performs an initial poll and then serves button, timer and bus
// triggers until ctx is done. Bus transactions run to completion inside
// this goroutine only.
func (s *Sampler) Run(ctx context.Context) error {
	defer s.unsubscribe()

	s.PollAndRecord(types.ReasonInitial)

	var buttonC, timerC <-chan time.Time
	if s.button != nil {
		t := s.clk.Ticker(s.cfg.ButtonPoll)
		defer t.Stop()
		buttonC = t.C
	}
	if s.cfg.Interval > 0 {
		t := s.clk.Ticker(s.cfg.Interval)
		defer t.Stop()
		timerC = t.C
	}
	var refreshC, stateC <-chan *bus.Message
	if s.refreshSub != nil {
		refreshC = s.refreshSub.Channel()
		stateC = s.stateSub.Channel()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-buttonC:
			if s.CheckButton() {
				s.log.Infof("button pressed, reading sensors")
				s.PollAndRecord(types.ReasonButton)
			}
		case <-timerC:
			s.PollAndRecord(types.ReasonTimer)
		case m, ok := <-refreshC:
			if !ok {
				refreshC = nil
				continue
			}
			reason, _ := m.Payload.(types.Reason)
			if reason == "" {
				reason = types.ReasonRefresh
			}
			s.PollAndRecord(reason)
			s.conn.Reply(m, s.State(), false)
		case m, ok := <-stateC:
			if !ok {
				stateC = nil
				continue
			}
			s.conn.Reply(m, s.State(), false)
		}
	}
}

func (s *Sampler) unsubscribe() {
	if s.conn == nil {
		return
	}
	if s.refreshSub != nil {
		s.conn.Unsubscribe(s.refreshSub)
	}
	if s.stateSub != nil {
		s.conn.Unsubscribe(s.stateSub)
	}
}

// ErrBadReply is returned when a reply payload is not a types.State.
var ErrBadReply = errors.New("sampler: unexpected reply payload")

// Refresh asks a running sampler to poll now and returns the new state.
// Expiry of ctx is reported as errcode.Timeout.
func Refresh(ctx context.Context, conn *bus.Connection, reason types.Reason) (types.State, error) {
	return request(ctx, conn, conn.NewMessage(TopicRefresh, reason, false))
}

// Query returns the current state of a running sampler without polling.
func Query(ctx context.Context, conn *bus.Connection) (types.State, error) {
	return request(ctx, conn, conn.NewMessage(TopicState, nil, false))
}

func request(ctx context.Context, conn *bus.Connection, msg *bus.Message) (types.State, error) {
	rep, err := conn.RequestWait(ctx, msg)
	if err != nil {
		return types.State{}, errcode.Wrap(errcode.Timeout, "sampler "+msg.Topic.String(), err)
	}
	st, ok := rep.Payload.(types.State)
	if !ok {
		return types.State{}, ErrBadReply
	}
	return st, nil
}
