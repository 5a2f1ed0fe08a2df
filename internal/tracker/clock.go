package tracker

import "time"

// Clock supplies the current instant. The tracker's rollover detection is
// purely a function of the clock, so tests pin it to cross day boundaries
// deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
