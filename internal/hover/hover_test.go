package hover

import (
	"testing"
	"time"
)

const delay = 20 * time.Millisecond

func recorder() (func(bool), chan bool) {
	ch := make(chan bool, 8)
	return func(v bool) { ch <- v }, ch
}

func expect(t *testing.T, ch chan bool, want bool) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("set(%v), want set(%v)", got, want)
		}
	case <-time.After(10 * delay):
		t.Fatalf("set(%v) was never called", want)
	}
}

func expectNothing(t *testing.T, ch chan bool) {
	t.Helper()
	select {
	case got := <-ch:
		t.Fatalf("unexpected set(%v)", got)
	case <-time.After(5 * delay):
	}
}

func TestScheduleShow(t *testing.T) {
	set, ch := recorder()
	in := New(delay, set)

	start := time.Now()
	in.ScheduleShow()
	if !in.Pending() {
		t.Fatal("show should be pending")
	}
	expect(t, ch, true)
	if elapsed := time.Since(start); elapsed < delay {
		t.Fatalf("fired after %v, before the %v delay", elapsed, delay)
	}
	if in.Pending() {
		t.Fatal("nothing should be pending after firing")
	}
}

func TestLastScheduleWins(t *testing.T) {
	set, ch := recorder()
	in := New(delay, set)

	in.ScheduleShow()
	in.ScheduleHide()
	expect(t, ch, false)
	expectNothing(t, ch)

	in.ScheduleHide()
	in.ScheduleShow()
	expect(t, ch, true)
	expectNothing(t, ch)
}

func TestCancelAll(t *testing.T) {
	set, ch := recorder()
	in := New(delay, set)

	in.ScheduleShow()
	in.CancelAll()
	if in.Pending() {
		t.Fatal("CancelAll left a pending request")
	}
	expectNothing(t, ch)

	in.ScheduleHide()
	expect(t, ch, false)
}

func TestClose(t *testing.T) {
	set, ch := recorder()
	in := New(delay, set)

	in.ScheduleShow()
	in.Close()
	in.ScheduleHide()
	expectNothing(t, ch)
}

func TestDefaultDelay(t *testing.T) {
	if in := New(0, func(bool) {}); in.delay != DefaultDelay {
		t.Fatalf("delay = %v, want %v", in.delay, DefaultDelay)
	}
}
