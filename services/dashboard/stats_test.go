package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sensordash/types"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{20, 30, 40})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, types.Some(20), s.Min)
	assert.Equal(t, types.Some(30), s.Mean)
	assert.Equal(t, types.Some(40), s.Max)
}

func TestSummarizeEmptyIsAbsent(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.False(t, s.Min.Valid)
	assert.False(t, s.Mean.Valid)
	assert.False(t, s.Max.Valid)
}

func TestSummarizeAllCoversEveryChannel(t *testing.T) {
	got := SummarizeAll(types.Snapshot{types.ChanRTDTemp: {1.5}})
	assert.Len(t, got, len(types.Channels))
	assert.Equal(t, types.Some(1.5), got[types.ChanRTDTemp].Max)
	assert.False(t, got[types.ChanHumidity].Mean.Valid)
}
