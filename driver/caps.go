package driver

// Caps is the capability bitset of a device profile. A profile without any
// width bit is an 8-channel logic device.
type Caps uint32

const (
	// Cap16Bit marks a 16-channel logic device
	Cap16Bit Caps = 1 << iota

	// Cap24Bit marks a 24-channel logic device
	Cap24Bit

	// Cap32Bit marks a 32-channel logic device
	Cap32Bit

	// CapAnalog marks a device with an analog channel
	CapAnalog

	// CapFX3 marks an FX3-class device: extended firmware format, no
	// external CPU reset toggling, and the full sample-rate table.
	CapFX3
)

// LogicChannels returns the number of logic channels the caps imply.
// Exactly one of 8, 16, 24 or 32.
func (c Caps) LogicChannels() int {
	switch {
	case c&Cap32Bit != 0:
		return 32
	case c&Cap24Bit != 0:
		return 24
	case c&Cap16Bit != 0:
		return 16
	default:
		return 8
	}
}

// AnalogChannels returns the number of analog channels the caps imply.
func (c Caps) AnalogChannels() int {
	if c&CapAnalog != 0 {
		return 1
	}
	return 0
}

// FX3 reports whether the profile describes an FX3-class device.
func (c Caps) FX3() bool {
	return c&CapFX3 != 0
}
