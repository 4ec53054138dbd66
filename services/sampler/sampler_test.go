package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensordash/bus"
	"sensordash/drivers/htu21d"
	"sensordash/drivers/max31865"
	"sensordash/errcode"
	"sensordash/services/config"
	"sensordash/services/hal/sim"
	"sensordash/types"
)

func noDelay(time.Duration) {}

type rig struct {
	htuChip *sim.HTU21D
	rtdChip *sim.MAX31865
	button  *sim.Pin
	clk     *clock.Mock
	s       *Sampler
}

func newRig(t *testing.T, cfg Config, conn *bus.Connection) *rig {
	t.Helper()
	r := &rig{
		htuChip: sim.NewHTU21D(),
		rtdChip: sim.NewMAX31865(),
		button:  sim.NewPin(15, true),
		clk:     clock.NewMock(),
	}
	htu := htu21d.New(r.htuChip, htu21d.Config{Delay: noDelay})
	rcfg := max31865.DefaultConfig()
	rcfg.Delay = noDelay
	rtd, err := max31865.New(r.rtdChip, r.rtdChip.CS(), rcfg)
	require.NoError(t, err)
	require.NoError(t, rtd.Configure())
	r.rtdChip.SetRaw(8000)

	r.s = New(cfg, Deps{HTU: htu, RTD: rtd, Button: r.button, Clock: r.clk, Conn: conn})
	return r
}

func TestPollAndRecordAllValid(t *testing.T) {
	r := newRig(t, Config{}, nil)
	r.htuChip.SetRaw(0x6540, 0x6E00)

	got := r.s.PollAndRecord(types.ReasonTimer)
	assert.Equal(t, types.ReasonTimer, got.Reason)
	assert.Equal(t, r.clk.Now(), got.At)
	require.True(t, got.HTUTemp.Valid)
	require.True(t, got.Humidity.Valid)
	require.True(t, got.RTDTemp.Valid)
	assert.InDelta(t, htu21d.Celsius(0x6540), got.HTUTemp.Value, 1e-9)
	assert.InDelta(t, htu21d.RelHumidity(0x6E00), got.Humidity.Value, 1e-9)
	assert.InDelta(t, max31865.Celsius(max31865.Resistance(8000, 430)), got.RTDTemp.Value, 1e-9)
	assert.Empty(t, got.Errors)

	for _, ch := range types.Channels {
		assert.Len(t, r.s.Snapshot(ch), 1, ch)
	}
	assert.Equal(t, got, r.s.Last())
}

func TestHTUFailureDoesNotBlockRTD(t *testing.T) {
	r := newRig(t, Config{}, nil)
	r.htuChip.SetFail(errors.New("nack"))

	got := r.s.PollAndRecord(types.ReasonButton)
	assert.False(t, got.HTUTemp.Valid)
	assert.False(t, got.Humidity.Valid)
	assert.True(t, got.RTDTemp.Valid)
	assert.Equal(t, string(errcode.TransportFailure), got.Errors[types.ChanHTUTemp])
	assert.Equal(t, string(errcode.TransportFailure), got.Errors[types.ChanHumidity])

	assert.Empty(t, r.s.Snapshot(types.ChanHTUTemp))
	assert.Empty(t, r.s.Snapshot(types.ChanHumidity))
	assert.Len(t, r.s.Snapshot(types.ChanRTDTemp), 1)
}

func TestRTDFailureDoesNotBlockHTU(t *testing.T) {
	r := newRig(t, Config{}, nil)
	r.rtdChip.SetFail(errors.New("miso stuck"))

	got := r.s.PollAndRecord(types.ReasonButton)
	assert.True(t, got.HTUTemp.Valid)
	assert.True(t, got.Humidity.Valid)
	assert.False(t, got.RTDTemp.Valid)
	assert.Equal(t, string(errcode.TransportFailure), got.Errors[types.ChanRTDTemp])
	assert.Len(t, r.s.Snapshot(types.ChanHTUTemp), 1)
	assert.Empty(t, r.s.Snapshot(types.ChanRTDTemp))
}

func TestRTDOpenCircuitIsAbsentWithFaultCode(t *testing.T) {
	r := newRig(t, Config{}, nil)
	r.rtdChip.SetRaw(32767)

	got := r.s.PollAndRecord(types.ReasonRefresh)
	assert.False(t, got.RTDTemp.Valid)
	assert.Equal(t, string(errcode.SensorFault), got.Errors[types.ChanRTDTemp])
	assert.True(t, got.HTUTemp.Valid)
}

// latchedFault reports a fault that survives the clear, as a real
// wiring problem does.
type latchedFault struct {
	RTD
	fault max31865.Fault
}

func (l latchedFault) ReadFault() (max31865.Fault, error) { return l.fault, nil }

func TestFaultIsInformational(t *testing.T) {
	r := newRig(t, Config{}, nil)
	r.s.rtd = latchedFault{RTD: r.s.rtd, fault: max31865.FaultRefInLow}

	got := r.s.PollAndRecord(types.ReasonRefresh)
	assert.True(t, got.RTDTemp.Valid, "fault status does not override the reading")
	assert.Equal(t, uint8(0x10), got.Fault)
}

func TestClearFaultRunsBeforeRead(t *testing.T) {
	r := newRig(t, Config{}, nil)
	r.rtdChip.SetFault(0x04)
	r.rtdChip.ResetFrames()

	got := r.s.PollAndRecord(types.ReasonRefresh)
	assert.Equal(t, uint8(0), got.Fault)

	frames := r.rtdChip.Frames()
	require.Len(t, frames, 4)
	assert.Equal(t, byte(0x00), frames[0].Out[0], "read config")
	assert.Equal(t, byte(0x80), frames[1].Out[0], "write config")
	assert.Equal(t, byte(0x01), frames[2].Out[0], "read rtd")
	assert.Equal(t, byte(0x07), frames[3].Out[0], "read fault")
}

func TestUnavailableDriversAreSkipped(t *testing.T) {
	s := New(Config{}, Deps{Clock: clock.NewMock()})
	got := s.PollAndRecord(types.ReasonInitial)
	for _, ch := range types.Channels {
		assert.False(t, got.Get(ch).Valid)
		assert.Equal(t, string(errcode.DriverUnavailable), got.Errors[ch])
		assert.Empty(t, s.Snapshot(ch))
	}
	st := s.State()
	assert.False(t, st.HTUAvailable)
	assert.False(t, st.RTDAvailable)
	assert.Equal(t, uint64(1), st.Polls)
}

func TestLogsEvictOldest(t *testing.T) {
	r := newRig(t, Config{LogDepth: 3}, nil)
	var want []float64
	for i := 0; i < 5; i++ {
		raw := uint16(0x6000 + i*0x100)
		r.htuChip.SetRaw(raw, raw)
		r.s.PollAndRecord(types.ReasonTimer)
		want = append(want, htu21d.Celsius(raw))
	}
	assert.Equal(t, want[2:], r.s.Snapshot(types.ChanHTUTemp))
	assert.Len(t, r.s.Snapshots()[types.ChanRTDTemp], 3)
	assert.Empty(t, r.s.Snapshot(types.Channel("bogus")))
}

func TestCheckButtonDebounce(t *testing.T) {
	r := newRig(t, Config{}, nil)

	assert.False(t, r.s.CheckButton(), "released")

	r.button.Press()
	assert.True(t, r.s.CheckButton(), "first press")

	r.clk.Add(100 * time.Millisecond)
	assert.False(t, r.s.CheckButton(), "inside window")

	r.clk.Add(100 * time.Millisecond)
	assert.False(t, r.s.CheckButton(), "exactly at window")

	r.clk.Add(time.Millisecond)
	assert.True(t, r.s.CheckButton(), "after window")

	r.button.Release()
	r.clk.Add(time.Second)
	assert.False(t, r.s.CheckButton())
}

func TestCheckButtonWithoutButton(t *testing.T) {
	s := New(Config{}, Deps{Clock: clock.NewMock()})
	assert.False(t, s.CheckButton())
}

func TestFromConfig(t *testing.T) {
	c, _ := config.Default("rpi")
	got := FromConfig(c)
	assert.Equal(t, 20, got.LogDepth)
	assert.Equal(t, 30*time.Second, got.Interval)
	assert.Equal(t, 200*time.Millisecond, got.Debounce)
	assert.Equal(t, 10*time.Millisecond, got.ButtonPoll)
}
