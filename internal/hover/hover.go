// Package hover debounces show/hide requests for hover panels such as user cards.
package hover

import (
	"sync"
	"time"
)

// DefaultDelay is how long a pointer has to stay before a panel opens or closes
const DefaultDelay = 500 * time.Millisecond

// Intent runs set(true) or set(false) after a delay unless another request
// comes first. Every schedule cancels whatever is pending, so the last
// request wins.
type Intent struct {
	delay time.Duration
	set   func(hovered bool)

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

// New returns an Intent calling set. A non-positive delay means DefaultDelay.
func New(delay time.Duration, set func(hovered bool)) *Intent {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Intent{delay: delay, set: set}
}

// ScheduleShow asks for set(true) after the delay
func (i *Intent) ScheduleShow() { i.schedule(true) }

// ScheduleHide asks for set(false) after the delay
func (i *Intent) ScheduleHide() { i.schedule(false) }

// CancelAll drops the pending request, if any
func (i *Intent) CancelAll() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()
}

// Pending reports whether a request is waiting for its delay
func (i *Intent) Pending() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.timer != nil
}

// Close cancels the pending request and ignores later ones
func (i *Intent) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()
	i.closed = true
}

func (i *Intent) schedule(hovered bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return
	}
	i.stopLocked()
	gen := i.gen
	i.timer = time.AfterFunc(i.delay, func() { i.fire(gen, hovered) })
}

// fire runs set unless the request was superseded. A timer that already
// started when Stop was called still lands here, hence the generation check.
func (i *Intent) fire(gen uint64, hovered bool) {
	i.mu.Lock()
	if gen != i.gen || i.closed {
		i.mu.Unlock()
		return
	}
	i.timer = nil
	i.mu.Unlock()
	i.set(hovered)
}

func (i *Intent) stopLocked() {
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	i.gen++
}
