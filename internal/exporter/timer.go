package exporter

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"k8s.io/utils/clock"
)

// ClockTimer adapts a k8s clock to the backoff timer so polling waits follow the injected clock.
type ClockTimer struct {
	clock clock.Clock
	timer clock.Timer
}

var _ backoff.Timer = (*ClockTimer)(nil)

func NewClockTimer(c clock.Clock) *ClockTimer {
	return &ClockTimer{clock: c}
}

func (t *ClockTimer) Start(d time.Duration) {
	if t.timer == nil {
		t.timer = t.clock.NewTimer(d)
		return
	}
	t.timer.Reset(d)
}

func (t *ClockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *ClockTimer) C() <-chan time.Time {
	return t.timer.C()
}
