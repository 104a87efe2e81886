package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

// fakeTimers captures scheduled callbacks instead of starting real timers.
func fakeTimers(t *testing.T) *[]func() {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })

	var scheduled []func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		scheduled = append(scheduled, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
	return &scheduled
}

func TestBurstRunsLatestOnly(t *testing.T) {
	scheduled := fakeTimers(t)

	var rescans atomic.Int32
	d := New(time.Second, func() { rescans.Add(1) })
	for i := 0; i < 3; i++ {
		d.Trigger()
	}
	if len(*scheduled) != 3 {
		t.Fatalf("scheduled %d callbacks, want 3", len(*scheduled))
	}
	for _, f := range *scheduled {
		f()
	}
	if got := rescans.Load(); got != 1 {
		t.Fatalf("rescans = %d, want 1", got)
	}
}

func TestStopDropsFiredCallback(t *testing.T) {
	scheduled := fakeTimers(t)

	var rescans atomic.Int32
	d := New(time.Second, func() { rescans.Add(1) })
	d.Trigger()
	d.Stop()
	(*scheduled)[0]()
	if got := rescans.Load(); got != 0 {
		t.Fatalf("rescans after Stop = %d, want 0", got)
	}

	d.Trigger()
	(*scheduled)[1]()
	if got := rescans.Load(); got != 1 {
		t.Fatalf("Trigger after Stop: rescans = %d, want 1", got)
	}
}

func TestTriggerFiresAfterDelay(t *testing.T) {
	var rescans atomic.Int32
	done := make(chan struct{})
	d := New(10*time.Millisecond, func() {
		if rescans.Add(1) == 1 {
			close(done)
		}
	})
	d.Trigger()
	d.Trigger()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debouncer did not fire")
	}
	time.Sleep(30 * time.Millisecond)
	if got := rescans.Load(); got != 1 {
		t.Fatalf("rescans = %d, want 1", got)
	}
}

func TestStopBeforeDelay(t *testing.T) {
	var rescans atomic.Int32
	d := New(20*time.Millisecond, func() { rescans.Add(1) })
	d.Trigger()
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	if got := rescans.Load(); got != 0 {
		t.Fatalf("rescans = %d, want 0", got)
	}
}
