// Package sampler runs the acquisition loop: it polls both sensors on
// button presses, refresh requests and an optional timer, isolates
// per-sensor failures and keeps a rolling history per channel.
//
// A Sampler is owned by one goroutine. While Run is active other
// goroutines reach it only through the bus (see Refresh and Query).
package sampler

import (
	"time"

	"github.com/benbjohnson/clock"

	"sensordash/bus"
	"sensordash/drivers/max31865"
	"sensordash/errcode"
	"sensordash/types"
	"sensordash/x/logx"
	"sensordash/x/ringlog"
)

// Bus topics served by the sampler.
var (
	TopicReadings = bus.T("sampler", "readings") // retained, after every poll
	TopicRefresh  = bus.T("sampler", "refresh")  // request: types.Reason, reply: types.State
	TopicState    = bus.T("sampler", "state")    // request: nil, reply: types.State
)

// HTU is the humidity/temperature sensor contract.
type HTU interface {
	ReadTemperature() (float64, error)
	ReadHumidity() (float64, error)
}

// RTD is the RTD converter contract.
type RTD interface {
	ClearFault() error
	ReadTemperature() (types.Reading, error)
	ReadFault() (max31865.Fault, error)
}

// Button is an active-low digital input.
type Button interface {
	Get() bool
}

// Config holds loop timings.
type Config struct {
	// LogDepth is the rolling log capacity. Default 20.
	LogDepth int
	// Debounce is the minimum time between button triggers. Default 200 ms.
	Debounce time.Duration
	// ButtonPoll is the input sampling period. Default 10 ms.
	ButtonPoll time.Duration
	// Interval triggers timer polls; zero disables them.
	Interval time.Duration
}

// Deps are the collaborators. A nil sensor is treated as unavailable for
// the life of the process.
type Deps struct {
	HTU    HTU
	RTD    RTD
	Button Button
	Conn   *bus.Connection
	Clock  clock.Clock
	Log    logx.Logger
}

// Sampler polls the sensors and owns their rolling logs.
type Sampler struct {
	cfg    Config
	htu    HTU
	rtd    RTD
	button Button
	conn   *bus.Connection
	clk    clock.Clock
	log    logx.Logger

	logs map[types.Channel]*ringlog.Log[float64]

	refreshSub *bus.Subscription
	stateSub   *bus.Subscription

	lastTrigger time.Time
	last        types.Readings
	polls       uint64
}

// New builds a sampler. When deps.Conn is set the refresh and state
// topics are subscribed immediately so that early requests queue until
// Run starts.
func New(cfg Config, deps Deps) *Sampler {
	if cfg.LogDepth <= 0 {
		cfg.LogDepth = 20
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if cfg.ButtonPoll <= 0 {
		cfg.ButtonPoll = 10 * time.Millisecond
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Log == nil {
		deps.Log = logx.Nop()
	}
	s := &Sampler{
		cfg:    cfg,
		htu:    deps.HTU,
		rtd:    deps.RTD,
		button: deps.Button,
		conn:   deps.Conn,
		clk:    deps.Clock,
		log:    deps.Log,
		logs:   make(map[types.Channel]*ringlog.Log[float64], len(types.Channels)),
	}
	for _, ch := range types.Channels {
		s.logs[ch] = ringlog.New[float64](cfg.LogDepth)
	}
	if s.htu == nil {
		s.log.Warnf("htu21d unavailable, humidity channels disabled")
	}
	if s.rtd == nil {
		s.log.Warnf("max31865 unavailable, rtd channel disabled")
	}
	if s.conn != nil {
		s.refreshSub = s.conn.Subscribe(TopicRefresh)
		s.stateSub = s.conn.Subscribe(TopicState)
	}
	return s
}

// PollAndRecord reads both sensors, records valid values and publishes
// the result. It never fails: absent readings carry an error code.
func (s *Sampler) PollAndRecord(reason types.Reason) types.Readings {
	r := types.Readings{Reason: reason, At: s.clk.Now()}
	s.readHTU(&r)
	s.readRTD(&r)
	s.record(r)
	s.last = r
	s.polls++

	s.log.Infof("poll %s: htu=%s°C humidity=%s%% rtd=%s°C",
		reason, r.HTUTemp, r.Humidity, r.RTDTemp)

	if s.conn != nil {
		s.conn.Publish(s.conn.NewMessage(TopicReadings, r, true))
	}
	return r
}

func (s *Sampler) readHTU(r *types.Readings) {
	if s.htu == nil {
		r.HTUTemp, r.Humidity = types.None(), types.None()
		s.fail(r, errcode.DriverUnavailable, types.ChanHTUTemp, types.ChanHumidity)
		return
	}
	t, err := s.htu.ReadTemperature()
	if err == nil {
		var h float64
		if h, err = s.htu.ReadHumidity(); err == nil {
			r.HTUTemp, r.Humidity = types.Some(t), types.Some(h)
			return
		}
	}
	s.log.Errorf("htu21d read failed: %v", err)
	r.HTUTemp, r.Humidity = types.None(), types.None()
	s.fail(r, errcode.Of(err), types.ChanHTUTemp, types.ChanHumidity)
}

func (s *Sampler) readRTD(r *types.Readings) {
	if s.rtd == nil {
		r.RTDTemp = types.None()
		s.fail(r, errcode.DriverUnavailable, types.ChanRTDTemp)
		return
	}
	if err := s.rtd.ClearFault(); err != nil {
		s.log.Errorf("max31865 clear fault failed: %v", err)
		r.RTDTemp = types.None()
		s.fail(r, errcode.Of(err), types.ChanRTDTemp)
		return
	}
	t, err := s.rtd.ReadTemperature()
	r.RTDTemp = t
	if err != nil {
		r.RTDTemp = types.None()
		s.fail(r, errcode.Of(err), types.ChanRTDTemp)
		if errcode.Of(err) != errcode.SensorFault {
			s.log.Errorf("max31865 read failed: %v", err)
			return
		}
		s.log.Warnf("max31865: %v", err)
	}
	f, err := s.rtd.ReadFault()
	if err != nil {
		s.log.Errorf("max31865 fault status read failed: %v", err)
		return
	}
	r.Fault = uint8(f)
	if f.Active() {
		s.log.Warnf("max31865 fault 0x%02X (%s), check the RTD wiring", uint8(f), f)
	}
}

func (s *Sampler) fail(r *types.Readings, code errcode.Code, chans ...types.Channel) {
	if r.Errors == nil {
		r.Errors = make(map[types.Channel]string, len(chans))
	}
	for _, ch := range chans {
		r.Errors[ch] = string(code)
	}
}

func (s *Sampler) record(r types.Readings) {
	for _, ch := range types.Channels {
		s.logs[ch].Record(r.Get(ch).Get())
	}
}

// Snapshot returns the rolling log of ch, oldest first.
func (s *Sampler) Snapshot(ch types.Channel) []float64 {
	l, ok := s.logs[ch]
	if !ok {
		return []float64{}
	}
	return l.Snapshot()
}

// Snapshots returns every channel's log.
func (s *Sampler) Snapshots() types.Snapshot {
	out := make(types.Snapshot, len(s.logs))
	for ch, l := range s.logs {
		out[ch] = l.Snapshot()
	}
	return out
}

// Last returns the most recent poll result.
func (s *Sampler) Last() types.Readings { return s.last }

// State bundles the last readings and the history.
func (s *Sampler) State() types.State {
	return types.State{
		Readings:     s.last,
		History:      s.Snapshots(),
		Polls:        s.polls,
		HTUAvailable: s.htu != nil,
		RTDAvailable: s.rtd != nil,
	}
}

// CheckButton samples the active-low input and reports whether a press
// is accepted. Presses within the debounce window of the last accepted
// one are ignored.
func (s *Sampler) CheckButton() bool {
	if s.button == nil || s.button.Get() {
		return false
	}
	now := s.clk.Now()
	if !s.lastTrigger.IsZero() && now.Sub(s.lastTrigger) <= s.cfg.Debounce {
		return false
	}
	s.lastTrigger = now
	return true
}
