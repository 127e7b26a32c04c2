package driver

const (
	khz uint64 = 1000
	mhz uint64 = 1000 * khz
)

// samplerates is the full rate table in Hz. The last numFX3Rates entries
// are reachable only by FX3-class devices.
var samplerates = []uint64{
	200 * khz,
	250 * khz,
	500 * khz,
	1 * mhz,
	2 * mhz,
	3 * mhz,
	4 * mhz,
	6 * mhz,
	8 * mhz,
	12 * mhz,
	16 * mhz,
	24 * mhz,
	32 * mhz,
	48 * mhz,
	64 * mhz,
	96 * mhz,
	192 * mhz,
}

const numFX3Rates = 5

// ratesFor returns the slice of the rate table applicable to the caps.
func ratesFor(caps Caps) []uint64 {
	if caps.FX3() {
		return samplerates
	}
	return samplerates[:len(samplerates)-numFX3Rates]
}

// TriggerMatch is a trigger condition selectable per channel.
type TriggerMatch int32

const (
	TriggerZero TriggerMatch = iota + 1
	TriggerOne
	TriggerRising
	TriggerFalling
	TriggerEdge
)

func (m TriggerMatch) String() string {
	switch m {
	case TriggerZero:
		return "zero"
	case TriggerOne:
		return "one"
	case TriggerRising:
		return "rising"
	case TriggerFalling:
		return "falling"
	case TriggerEdge:
		return "edge"
	default:
		return "unknown"
	}
}

var triggerMatches = []TriggerMatch{
	TriggerZero,
	TriggerOne,
	TriggerRising,
	TriggerFalling,
	TriggerEdge,
}

// TriggerMatches returns the trigger conditions the device class supports.
func TriggerMatches() []TriggerMatch {
	out := make([]TriggerMatch, len(triggerMatches))
	copy(out, triggerMatches)
	return out
}
