// Package autosave schedules a single persist per key once edits pause.
package autosave

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrStopped = errors.New("autosave: debouncer stopped")

// Flush tells the consumer that key has been quiet for the configured delay.
type Flush struct {
	Key string
	At  time.Time
}

type pending struct {
	key      string
	deadline time.Time
	gen      uint64
}

type deadlineQueue []pending

func (q deadlineQueue) Len() int { return len(q) }

func (q deadlineQueue) Less(i, j int) bool {
	return q[i].deadline.Before(q[j].deadline)
}

func (q deadlineQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *deadlineQueue) Push(x any) {
	*q = append(*q, x.(pending))
}

func (q *deadlineQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Debouncer re-arms a per-key timer on every Touch. Only the latest touch of
// a key survives, so a burst of edits yields one Flush.
type Debouncer struct {
	delay time.Duration
	now   func() time.Time

	mu      sync.Mutex
	queue   deadlineQueue
	live    map[string]uint64
	gen     uint64
	out     chan Flush
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func New(delay time.Duration, bufferSize int) *Debouncer {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{
		delay:  delay,
		now:    time.Now,
		queue:  make(deadlineQueue, 0),
		live:   map[string]uint64{},
		out:    make(chan Flush, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (d *Debouncer) C() <-chan Flush {
	return d.out
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

func (d *Debouncer) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	heap.Init(&d.queue)
	go d.loop()
}

// Stop ends the loop and closes C. Pending keys are discarded; call FlushNow
// first for anything that must still be saved.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.stopped = true
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	d.mu.Unlock()
	<-d.doneCh
}

// Touch (re)arms key to fire after the quiet period, cancelling any earlier
// schedule for the same key.
func (d *Debouncer) Touch(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	d.gen++
	d.live[key] = d.gen
	heap.Push(&d.queue, pending{key: key, deadline: d.now().Add(d.delay), gen: d.gen})
	d.signalWakeup()
	return nil
}

// FlushNow cancels the pending schedule for key and reports whether one existed.
// The caller persists synchronously when it returns true.
func (d *Debouncer) FlushNow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.live[key]
	delete(d.live, key)
	return ok
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.live[key]
	return ok
}

func (d *Debouncer) Dropped() uint64 {
	return atomic.LoadUint64(&d.dropped)
}

func (d *Debouncer) loop() {
	defer close(d.doneCh)
	defer close(d.out)

	var timer *time.Timer
	for {
		next, hasNext := d.peek()
		if !hasNext {
			select {
			case <-d.wakeup:
				continue
			case <-d.stopCh:
				return
			}
		}

		wait := next.Sub(d.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, fl := range d.popDue(d.now()) {
				select {
				case d.out <- fl:
				default:
					atomic.AddUint64(&d.dropped, 1)
				}
			}
		case <-d.wakeup:
			continue
		case <-d.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (d *Debouncer) signalWakeup() {
	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

// peek drops superseded entries and returns the earliest live deadline.
func (d *Debouncer) peek() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) > 0 {
		head := d.queue[0]
		if d.live[head.key] == head.gen {
			return head.deadline, true
		}
		heap.Pop(&d.queue)
	}
	return time.Time{}, false
}

func (d *Debouncer) popDue(now time.Time) []Flush {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Flush, 0)
	for len(d.queue) > 0 {
		head := d.queue[0]
		if head.deadline.After(now) {
			break
		}
		heap.Pop(&d.queue)
		if gen, ok := d.live[head.key]; !ok || gen != head.gen {
			continue
		}
		delete(d.live, head.key)
		out = append(out, Flush{Key: head.key, At: now})
	}
	return out
}

func resetTimer(timer *time.Timer, dur time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(dur)
	}
	stopTimer(timer)
	timer.Reset(dur)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
