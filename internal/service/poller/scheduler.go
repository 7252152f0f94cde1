package poller

import (
	"sync"
	"time"
)

// Scheduler delivers repeating ticks. It decouples what happens on a
// tick from how ticks are produced so tests can drive ticks manually.
type Scheduler interface {
	// ScheduleRepeating invokes fn every interval until the returned
	// cancel function is called. Invocations of fn never overlap.
	ScheduleRepeating(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs each scheduled unit on its own goroutine driven
// by a time.Ticker. Slow fn invocations drop ticks instead of stacking.
type TickerScheduler struct{}

// ScheduleRepeating starts the ticker goroutine.
func (TickerScheduler) ScheduleRepeating(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
