package driver

import "fmt"

// Key identifies a configuration item of the config plane.
type Key int

const (
	// KeyConn is the device's connection identity ("bus.address"), get only
	KeyConn Key = iota

	// KeyLimitSamples is the capture sample limit
	KeyLimitSamples

	// KeySamplerate is the acquisition sample rate in Hz
	KeySamplerate

	// KeyCaptureRatio is the pre-trigger capture ratio in percent
	KeyCaptureRatio

	// KeyTriggerMatch is the supported trigger condition set, list only
	KeyTriggerMatch
)

func (k Key) String() string {
	switch k {
	case KeyConn:
		return "conn"
	case KeyLimitSamples:
		return "limit-samples"
	case KeySamplerate:
		return "samplerate"
	case KeyCaptureRatio:
		return "capture-ratio"
	case KeyTriggerMatch:
		return "trigger-match"
	default:
		return fmt.Sprintf("key(%d)", int(k))
	}
}

// Get returns the current value of a configuration key.
//
// KeyConn fails with ErrPendingRenumeration while the device address is
// still the sentinel, since the connection identity is not yet knowable.
// Unknown keys fail with ErrNotSupported.
func (d *Device) Get(key Key) (interface{}, error) {
	switch key {
	case KeyConn:
		if d.address == PendingAddress {
			// Device still needs to re-enumerate after the firmware
			// upload, so we don't know its (future) address.
			return nil, ErrPendingRenumeration
		}
		return fmt.Sprintf("%d.%d", d.busNum, d.address), nil
	case KeyLimitSamples:
		return d.limitSamples, nil
	case KeySamplerate:
		return d.curSamplerate, nil
	case KeyCaptureRatio:
		return d.captureRatio, nil
	default:
		return nil, ErrNotSupported
	}
}

// Set updates a configuration key. An out-of-range value never clamps: it
// fails with *ArgumentError and leaves the prior state unchanged.
func (d *Device) Set(key Key, value interface{}) error {
	switch key {
	case KeySamplerate:
		rate, ok := value.(uint64)
		if !ok {
			return &ArgumentError{Key: key, Value: value, Reason: "want uint64 Hz"}
		}
		for _, r := range d.samplerates {
			if r == rate {
				d.curSamplerate = rate
				return nil
			}
		}
		return &ArgumentError{Key: key, Value: value, Reason: "not in the device's samplerate list"}
	case KeyLimitSamples:
		limit, ok := value.(uint64)
		if !ok {
			return &ArgumentError{Key: key, Value: value, Reason: "want uint64"}
		}
		d.limitSamples = limit
		return nil
	case KeyCaptureRatio:
		ratio, ok := value.(uint64)
		if !ok {
			return &ArgumentError{Key: key, Value: value, Reason: "want uint64 percent"}
		}
		if ratio > 100 {
			return &ArgumentError{Key: key, Value: value, Reason: "want a percentage"}
		}
		d.captureRatio = ratio
		return nil
	default:
		return ErrNotSupported
	}
}

// List returns the enumeration behind a configuration key, scoped to this
// device where applicable.
func (d *Device) List(key Key) (interface{}, error) {
	switch key {
	case KeySamplerate:
		rates := make([]uint64, len(d.samplerates))
		copy(rates, d.samplerates)
		return rates, nil
	case KeyTriggerMatch:
		return TriggerMatches(), nil
	default:
		return nil, ErrNotSupported
	}
}
