package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensordash/types"
)

var (
	readingsTopic = T("sampler", "readings")
	refreshTopic  = T("sampler", "refresh")
	stateTopic    = T("sampler", "state")
)

func recv(t *testing.T, s *Subscription) *Message {
	t.Helper()
	select {
	case m, ok := <-s.Channel():
		require.True(t, ok, "subscription closed")
		return m
	case <-time.After(time.Second):
		t.Fatalf("no message on %s", s.Topic())
	}
	return nil
}

func quiet(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case m := <-s.Channel():
		t.Fatalf("unexpected message on %s: %v", m.Topic, m.Payload)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("dashboard")
	sub := c.Subscribe(readingsTopic)

	r := types.Readings{HTUTemp: types.Some(22.5), Reason: types.ReasonButton}
	c.Publish(c.NewMessage(readingsTopic, r, false))

	m := recv(t, sub)
	assert.Equal(t, "sampler/readings", m.Topic.String())
	assert.Equal(t, r, m.Payload)
}

func TestRetainedReadingsReachLateSubscriber(t *testing.T) {
	b := NewBus(4)
	smp := b.NewConnection("sampler")
	smp.Publish(smp.NewMessage(readingsTopic, types.Readings{Reason: types.ReasonInitial}, true))
	smp.Publish(smp.NewMessage(readingsTopic, types.Readings{Reason: types.ReasonTimer}, true))

	late := b.NewConnection("dashboard").Subscribe(readingsTopic)
	m := recv(t, late)
	assert.True(t, m.Retained)
	assert.Equal(t, types.ReasonTimer, m.Payload.(types.Readings).Reason, "only the newest retained message is kept")
	quiet(t, late)

	// A wildcard subscriber sees the retained value too.
	all := b.NewConnection("monitor").Subscribe(T("sampler", "#"))
	assert.Equal(t, types.ReasonTimer, recv(t, all).Payload.(types.Readings).Reason)
}

func TestRetainedClearedByNilPayload(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("sampler")
	c.Publish(c.NewMessage(readingsTopic, types.Readings{}, true))
	c.Publish(c.NewMessage(readingsTopic, nil, true))

	quiet(t, c.Subscribe(readingsTopic))
}

func TestWildcardDelivery(t *testing.T) {
	b := NewBus(8)
	c := b.NewConnection("monitor")
	anySampler := c.Subscribe(T("sampler", "+"))
	everything := c.Subscribe(T("#"))
	heartbeat := c.Subscribe(T("heartbeat", "status"))

	c.Publish(c.NewMessage(readingsTopic, types.Readings{}, false))
	recv(t, anySampler)
	recv(t, everything)
	quiet(t, heartbeat)

	c.Publish(c.NewMessage(T("heartbeat", "status"), "beat", false))
	recv(t, heartbeat)
	recv(t, everything)
	quiet(t, anySampler)
}

func TestTopicMatches(t *testing.T) {
	cases := []struct {
		topic, pattern Topic
		want           bool
	}{
		{readingsTopic, readingsTopic, true},
		{readingsTopic, T("sampler"), false},
		{T("sampler"), readingsTopic, false},
		{readingsTopic, T("+", "readings"), true},
		{readingsTopic, T("sampler", "+", "x"), false},
		{T("_reply", "dashboard", "3"), T("_reply", "#"), true},
		{T("sampler"), T("sampler", "#"), true},
		{T("heartbeat", "status"), T("sampler", "#"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.topic.Matches(tc.pattern), "%s vs %s", tc.topic, tc.pattern)
	}
}

// serveState answers refresh and state requests the way the sampler
// loop does: a refresh bumps the poll count and echoes the reason.
func serveState(ctx context.Context, c *Connection) {
	refresh := c.Subscribe(refreshTopic)
	state := c.Subscribe(stateTopic)
	go func() {
		var st types.State
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-refresh.Channel():
				st.Polls++
				st.Readings.Reason, _ = m.Payload.(types.Reason)
				st.Readings.HTUTemp = types.Some(21)
				c.Reply(m, st, false)
			case m := <-state.Channel():
				c.Reply(m, st, false)
			}
		}
	}()
}

func TestRefreshAndStateRequestReply(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	b := NewBus(4)
	serveState(ctx, b.NewConnection("sampler"))
	ui := b.NewConnection("dashboard")

	rep, err := ui.RequestWait(ctx, ui.NewMessage(refreshTopic, types.ReasonRefresh, false))
	require.NoError(t, err)
	st, ok := rep.Payload.(types.State)
	require.True(t, ok)
	assert.EqualValues(t, 1, st.Polls)
	assert.Equal(t, types.ReasonRefresh, st.Readings.Reason)
	assert.Equal(t, "21.00", st.Readings.HTUTemp.String())

	rep, err = ui.RequestWait(ctx, ui.NewMessage(stateTopic, nil, false))
	require.NoError(t, err)
	assert.EqualValues(t, 1, rep.Payload.(types.State).Polls, "a state query does not poll")
}

func TestRequestReplyTopicsAreDistinct(t *testing.T) {
	b := NewBus(4)
	ui := b.NewConnection("dashboard")
	other := b.NewConnection("cli").Subscribe(T("_reply", "dashboard", "#"))

	m1 := ui.NewMessage(stateTopic, nil, false)
	m2 := ui.NewMessage(stateTopic, nil, false)
	s1, s2 := ui.Request(m1), ui.Request(m2)
	defer ui.Unsubscribe(s1)
	defer ui.Unsubscribe(s2)
	assert.NotEqual(t, m1.ReplyTo.String(), m2.ReplyTo.String())

	b.NewConnection("sampler").Reply(m2, types.State{Polls: 7}, false)
	assert.EqualValues(t, 7, recv(t, s2).Payload.(types.State).Polls)
	quiet(t, s1)
	recv(t, other)
}

func TestRequestWaitCancellation(t *testing.T) {
	b := NewBus(4)
	ui := b.NewConnection("dashboard")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := ui.RequestWait(ctx, ui.NewMessage(refreshTopic, types.ReasonRefresh, false))
	assert.ErrorIs(t, err, context.Canceled)

	dctx, dcancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer dcancel()
	_, err = ui.RequestWait(dctx, ui.NewMessage(stateTopic, nil, false))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Abandoned reply subscriptions are gone; late replies go nowhere.
	b.mu.RLock()
	assert.Empty(t, b.subs)
	b.mu.RUnlock()
}

func TestReplyWithoutReplyToIgnored(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("sampler")
	all := c.Subscribe(T("#"))

	c.Reply(c.NewMessage(stateTopic, nil, false), types.State{}, false)
	c.Reply(nil, types.State{}, false)
	quiet(t, all)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("dashboard")
	s := c.Subscribe(readingsTopic)
	s.Unsubscribe()

	_, ok := <-s.Channel()
	assert.False(t, ok)
	// A second unsubscribe is harmless.
	c.Unsubscribe(s)
}

func TestDisconnectClosesSubscriptions(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("dashboard")
	s1 := c.Subscribe(readingsTopic)
	s2 := c.Subscribe(T("heartbeat", "#"))
	c.Disconnect()

	for _, s := range []*Subscription{s1, s2} {
		_, ok := <-s.Channel()
		assert.False(t, ok)
	}
	c.Publish(c.NewMessage(readingsTopic, types.Readings{}, false))
}

func TestFullQueueDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("sampler")
	s := c.Subscribe(readingsTopic)
	for _, r := range []types.Reason{types.ReasonInitial, types.ReasonTimer, types.ReasonButton} {
		c.Publish(c.NewMessage(readingsTopic, types.Readings{Reason: r}, false))
	}
	assert.Equal(t, types.ReasonTimer, recv(t, s).Payload.(types.Readings).Reason)
	assert.Equal(t, types.ReasonButton, recv(t, s).Payload.(types.Readings).Reason)
	quiet(t, s)
}
