package usecase

import "time"

// Clock abstracts time so tests can control staking accrual and the
// simulated confirmation delay deterministically.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

func NewSystemClock() Clock {
	return systemClock{}
}
