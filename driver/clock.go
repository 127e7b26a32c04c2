package driver

import "time"

// Clock abstracts monotonic time and sleeping so the renumeration wait can
// be tested without real time passing.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }
