// Package types holds the value types shared by the sampler, the bus and
// the dashboard.
package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// NotAvailable is the literal marker rendered for an absent reading.
const NotAvailable = "N/A"

// Reading is an optional measurement. The zero value is absent.
type Reading struct {
	Value float64
	Valid bool
}

func Some(v float64) Reading { return Reading{Value: v, Valid: true} }
func None() Reading          { return Reading{} }

// Get returns the value and whether it is present.
func (r Reading) Get() (float64, bool) { return r.Value, r.Valid }

// Format renders the value with prec decimals, or NotAvailable.
func (r Reading) Format(prec int) string {
	if !r.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(r.Value, 'f', prec, 64)
}

func (r Reading) String() string { return r.Format(2) }

// MarshalJSON encodes an absent reading as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Reading) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Some(v)
	return nil
}

// Channel names one measured quantity.
type Channel string

const (
	ChanHTUTemp  Channel = "htu_temp"
	ChanHumidity Channel = "humidity"
	ChanRTDTemp  Channel = "rtd_temp"
)

// Channels lists every channel in display order.
var Channels = []Channel{ChanHTUTemp, ChanHumidity, ChanRTDTemp}

// Reason says what triggered a poll cycle.
type Reason string

const (
	ReasonTimer   Reason = "timer"
	ReasonButton  Reason = "button"
	ReasonRefresh Reason = "refresh"
	ReasonInitial Reason = "initial"
)

// Readings is the result of one poll cycle.
type Readings struct {
	HTUTemp  Reading `json:"htu_temp"`
	Humidity Reading `json:"humidity"`
	RTDTemp  Reading `json:"rtd_temp"`

	Reason Reason    `json:"reason"`
	At     time.Time `json:"at"`

	// RTD fault status read after the conversion; informational only.
	Fault uint8 `json:"fault,omitempty"`
	// Per-channel error codes for absent readings.
	Errors map[Channel]string `json:"errors,omitempty"`
}

// Get returns the reading for ch.
func (r Readings) Get(ch Channel) Reading {
	switch ch {
	case ChanHTUTemp:
		return r.HTUTemp
	case ChanHumidity:
		return r.Humidity
	case ChanRTDTemp:
		return r.RTDTemp
	}
	return None()
}

// Snapshot is the rolling history of every channel, oldest first.
type Snapshot map[Channel][]float64

// State is the sampler view served to the presentation layer.
type State struct {
	Readings Readings `json:"readings"`
	History  Snapshot `json:"history"`
	Polls    uint64   `json:"polls"`

	HTUAvailable bool `json:"htu_available"`
	RTDAvailable bool `json:"rtd_available"`
}
