package dashboard

import (
	"github.com/montanaflynn/stats"

	"sensordash/types"
)

// Summary is the spread of one rolling log. Fields are absent (null in
// JSON) when the log is empty.
type Summary struct {
	Count int           `json:"count"`
	Min   types.Reading `json:"min"`
	Mean  types.Reading `json:"mean"`
	Max   types.Reading `json:"max"`
}

// Summarize computes min, mean and max of xs.
func Summarize(xs []float64) Summary {
	s := Summary{Count: len(xs)}
	data := stats.Float64Data(xs)
	if v, err := stats.Min(data); err == nil {
		s.Min = types.Some(v)
	}
	if v, err := stats.Mean(data); err == nil {
		s.Mean = types.Some(v)
	}
	if v, err := stats.Max(data); err == nil {
		s.Max = types.Some(v)
	}
	return s
}

// SummarizeAll summarises every channel of h.
func SummarizeAll(h types.Snapshot) map[types.Channel]Summary {
	out := make(map[types.Channel]Summary, len(types.Channels))
	for _, ch := range types.Channels {
		out[ch] = Summarize(h[ch])
	}
	return out
}
