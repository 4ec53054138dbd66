package max31865

// Register addresses. Writes set bit 7 of the address byte.
const (
	regConfig      = 0x00
	regRTDMSB      = 0x01
	regRTDLSB      = 0x02
	regHFaultMSB   = 0x03
	regHFaultLSB   = 0x04
	regLFaultMSB   = 0x05
	regLFaultLSB   = 0x06
	regFaultStatus = 0x07

	writeBit = 0x80
	readMask = 0x7F
)

// Configuration register bits.
const (
	cfgBias        = 0x80
	cfgAutoConvert = 0x40
	cfg1Shot       = 0x20
	cfg3Wire       = 0x10
	cfgFaultClear  = 0x02
	cfgFilter50Hz  = 0x01
)

// Raw code sentinels (15-bit).
const (
	rawShort = 0
	rawOpen  = 0x7FFF
)

// Fault is the fault status register.
type Fault uint8

// Fault status bits.
const (
	FaultHighThreshold Fault = 0x80
	FaultLowThreshold  Fault = 0x40
	FaultRefInHigh     Fault = 0x20 // REFIN- > 0.85 x VBIAS
	FaultRefInLow      Fault = 0x10 // REFIN- < 0.85 x VBIAS, FORCE- open
	FaultRTDInLow      Fault = 0x08 // RTDIN- < 0.85 x VBIAS, FORCE- open
	FaultOverUnderVolt Fault = 0x04
)

var faultNames = []struct {
	bit  Fault
	name string
}{
	{FaultHighThreshold, "rtd_high_threshold"},
	{FaultLowThreshold, "rtd_low_threshold"},
	{FaultRefInHigh, "refin_high"},
	{FaultRefInLow, "refin_low_force_open"},
	{FaultRTDInLow, "rtdin_low_force_open"},
	{FaultOverUnderVolt, "over_under_voltage"},
}

// Active reports whether any fault bit is set.
func (f Fault) Active() bool { return f != 0 }

// String lists the active conditions, "none" when clear.
func (f Fault) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	rest := f
	for _, n := range faultNames {
		if f&n.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
		rest &^= n.bit
	}
	if rest != 0 {
		if s != "" {
			s += "|"
		}
		s += "reserved"
	}
	return s
}
