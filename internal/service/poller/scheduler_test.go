package poller

import (
	"testing"
	"time"
)

func TestTickerSchedulerDeliversAndCancels(t *testing.T) {
	ticks := make(chan struct{}, 16)
	cancel := TickerScheduler{}.ScheduleRepeating(time.Millisecond, func() {
		ticks <- struct{}{}
	})

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
	}

	cancel()
	cancel() // second cancel must not panic

	// Drain anything in flight, then confirm silence.
	time.Sleep(10 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	select {
	case <-ticks:
		t.Fatal("tick delivered after cancel")
	case <-time.After(20 * time.Millisecond):
	}
}
