//go:build !(rp2040 || rp2350)

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sensordash/errcode"
	"sensordash/services/config"
	"sensordash/services/hal/sim"
	"sensordash/services/sampler"
	"sensordash/types"
	"sensordash/x/logx"
)

func simConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, ok := config.Default("sim")
	require.True(t, ok)
	return cfg
}

func TestSimBoardBringsUpBothSensors(t *testing.T) {
	cfg := simConfig(t)
	b, s := OpenSim(cfg)
	defer b.Close()

	deps := b.Sensors(cfg, nil)
	require.NotNil(t, deps.HTU)
	require.NotNil(t, deps.RTD)
	require.NotNil(t, deps.Button)

	// Configure wrote bias|auto|fault-clear for two wires.
	assert.Equal(t, byte(0xC0), s.RTD.Register(0x00)&0xFC)

	smp := sampler.New(sampler.Config{}, deps)
	r := smp.PollAndRecord(types.ReasonInitial)
	v, ok := r.HTUTemp.Get()
	require.True(t, ok)
	assert.InDelta(t, 22.65, v, 0.01)
	v, ok = r.Humidity.Get()
	require.True(t, ok)
	assert.InDelta(t, 47.71, v, 0.01)
	v, ok = r.RTDTemp.Get()
	require.True(t, ok)
	assert.InDelta(t, 24.18, v, 0.01)
}

func TestSensorsSkipsDisabledDrivers(t *testing.T) {
	cfg := simConfig(t)
	cfg.HTU.Enabled = false
	cfg.RTD.Enabled = false
	cfg.Button.Enabled = false
	b, _ := OpenSim(cfg)

	deps := b.Sensors(cfg, nil)
	assert.Nil(t, deps.HTU)
	assert.Nil(t, deps.RTD)
	assert.Nil(t, deps.Button)
}

func TestMissingHTUIsReportedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := logx.FromZap(zap.New(core))

	cfg := simConfig(t)
	b, s := OpenSim(cfg)
	s.HTU.SetFail(sim.ErrNack)

	deps := b.Sensors(cfg, log)
	assert.Nil(t, deps.HTU, "a failed probe must leave the interface nil")
	assert.NotNil(t, deps.RTD)

	entries := logs.FilterMessageSnippet("htu21d init").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, string(errcode.DriverUnavailable))

	// The failed probe is the only transaction; no retry follows.
	assert.Len(t, s.HTU.Log(), 1)
}

func TestInvalidRTDWiringLeavesDriverOut(t *testing.T) {
	cfg := simConfig(t)
	cfg.RTD.Wires = 5
	b, s := OpenSim(cfg)

	deps := b.Sensors(cfg, nil)
	assert.Nil(t, deps.RTD)
	assert.Empty(t, s.RTD.Frames(), "the device must not be touched")
}

func TestMissingBusIsUnavailable(t *testing.T) {
	cfg := simConfig(t)
	b := &Board{Name: "bare"}

	_, err := b.openHTU(cfg.HTU)
	assert.Equal(t, errcode.DriverUnavailable, errcode.Of(err))
	_, err = b.openRTD(cfg.RTD)
	assert.Equal(t, errcode.DriverUnavailable, errcode.Of(err))
}

func TestCloseRunsInReverseAndCombines(t *testing.T) {
	var order []int
	b := &Board{}
	b.onClose(func() error { order = append(order, 1); return assert.AnError })
	b.onClose(func() error { order = append(order, 2); return nil })

	err := b.Close()
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, b.Close())
}

func TestPinNumber(t *testing.T) {
	for in, want := range map[string]int{
		"15": 15, "GP5": 5, "gp0": 0, "GPIO17": -1, "": -1, "-3": -1,
	} {
		assert.Equal(t, want, pinNumber(in), in)
	}
}
