package js

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultFrameInterval is the spacing of animation frames (60 Hz).
const DefaultFrameInterval = time.Second / 60

// Clock reports the loop's notion of the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to. Loops driven by a
// ManualClock are advanced with Loop.Advance.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Add moves the clock forward by d.
func (c *ManualClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TimerID identifies a timeout, interval or frame callback. The zero value
// is never issued, so it can mean "no timer".
type TimerID int

// FrameFunc runs once per animation frame with the time elapsed since its
// previous run (or since it was requested). Returning false stops it.
type FrameFunc func(dt time.Duration) bool

type timer struct {
	id       TimerID
	fn       func()
	due      time.Time
	interval time.Duration // 0 for a timeout
	seq      int
}

type frame struct {
	id   TimerID
	fn   FrameFunc
	last time.Time
}

// Loop is a single-threaded event loop. All widget state is owned by the
// goroutine running the loop; other goroutines hand work to it with Post
// or Do.
type Loop struct {
	mu            sync.Mutex
	clock         Clock
	logger        *slog.Logger
	frameInterval time.Duration

	timers map[TimerID]*timer
	frames []*frame
	posted []func()
	nextID TimerID
	seq    int

	lastFrame time.Time
	wake      chan struct{}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock sets the loop's clock. Use a *ManualClock for deterministic
// stepping.
func WithClock(c Clock) LoopOption {
	return func(l *Loop) { l.clock = c }
}

// WithLogger sets the logger used for recovered callback panics.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// WithFrameInterval overrides DefaultFrameInterval.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// NewLoop creates an event loop. Without WithClock it uses the wall clock.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		clock:         realClock{},
		logger:        slog.Default(),
		frameInterval: DefaultFrameInterval,
		timers:        make(map[TimerID]*timer),
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastFrame = l.clock.Now()
	return l
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// FrameInterval returns the spacing between animation frames.
func (l *Loop) FrameInterval() time.Duration {
	return l.frameInterval
}

// SetTimeout schedules fn to run once after delay.
func (l *Loop) SetTimeout(fn func(), delay time.Duration) TimerID {
	return l.addTimer(fn, delay, 0)
}

// SetInterval schedules fn to run every interval until cleared.
func (l *Loop) SetInterval(fn func(), interval time.Duration) TimerID {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return l.addTimer(fn, interval, interval)
}

func (l *Loop) addTimer(fn func(), delay, interval time.Duration) TimerID {
	if delay < 0 {
		delay = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.seq++
	id := l.nextID
	l.timers[id] = &timer{
		id:       id,
		fn:       fn,
		due:      l.clock.Now().Add(delay),
		interval: interval,
		seq:      l.seq,
	}
	return id
}

// RequestFrame runs fn on every animation frame until it returns false or
// is cleared.
func (l *Loop) RequestFrame(fn FrameFunc) TimerID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.frames = append(l.frames, &frame{id: id, fn: fn, last: l.clock.Now()})
	return id
}

// NextFrame runs fn once on the next animation frame.
func (l *Loop) NextFrame(fn func()) TimerID {
	return l.RequestFrame(func(time.Duration) bool {
		fn()
		return false
	})
}

// ClearTimer cancels a timeout, interval or frame callback. Clearing an
// unknown or already-fired id is a no-op.
func (l *Loop) ClearTimer(id TimerID) {
	if id == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.timers, id)
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i:i], l.frames[i+1:]...)
			return
		}
	}
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. It returns
// ctx.Err() if the context ends first; fn may still run later in that case.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether any posted task, timer or frame callback is
// waiting.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted) > 0 || len(l.timers) > 0 || len(l.frames) > 0
}

// Busy reports whether work other than repeating intervals is waiting.
func (l *Loop) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.posted) > 0 || len(l.frames) > 0 {
		return true
	}
	for _, t := range l.timers {
		if t.interval == 0 {
			return true
		}
	}
	return false
}

// RunOnce runs posted tasks, then every due timer in due order, then the
// frame callbacks if a frame interval has elapsed. It reports whether work
// remains.
func (l *Loop) RunOnce() bool {
	l.runPosted()
	l.runTimers()
	l.runFrames(false)
	return l.Pending()
}

func (l *Loop) runPosted() {
	for {
		l.mu.Lock()
		if len(l.posted) == 0 {
			l.mu.Unlock()
			return
		}
		tasks := l.posted
		l.posted = nil
		l.mu.Unlock()
		for _, fn := range tasks {
			l.safely("task", fn)
		}
	}
}

func (l *Loop) runTimers() {
	for {
		l.mu.Lock()
		now := l.clock.Now()
		var next *timer
		for _, t := range l.timers {
			if t.due.After(now) {
				continue
			}
			if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			l.mu.Unlock()
			return
		}
		if next.interval > 0 {
			next.due = next.due.Add(next.interval)
			l.seq++
			next.seq = l.seq
		} else {
			delete(l.timers, next.id)
		}
		l.mu.Unlock()

		l.safely("timer", next.fn)
		l.runPosted()
	}
}

func (l *Loop) runFrames(force bool) {
	l.mu.Lock()
	now := l.clock.Now()
	if len(l.frames) == 0 {
		l.lastFrame = now
		l.mu.Unlock()
		return
	}
	if !force && now.Sub(l.lastFrame) < l.frameInterval {
		l.mu.Unlock()
		return
	}
	l.lastFrame = now
	frames := append([]*frame(nil), l.frames...)
	l.mu.Unlock()

	for _, f := range frames {
		if !l.frameActive(f.id) {
			continue
		}
		dt := now.Sub(f.last)
		f.last = now
		keep := true
		l.safely("frame", func() { keep = f.fn(dt) })
		if !keep {
			l.ClearTimer(f.id)
		}
	}
	l.runPosted()
}

func (l *Loop) frameActive(id TimerID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.frames {
		if f.id == id {
			return true
		}
	}
	return false
}

func (l *Loop) safely(kind string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("loop callback panicked", "kind", kind, "panic", p)
		}
	}()
	fn()
}

// Advance moves a manual clock forward by d, firing timers at their due
// times and frames at every frame interval along the way. With any other
// clock it only runs one iteration.
func (l *Loop) Advance(d time.Duration) {
	mc, ok := l.clock.(*ManualClock)
	if !ok {
		l.RunOnce()
		return
	}
	end := mc.Now().Add(d)
	l.RunOnce()
	for {
		now := mc.Now()
		if !now.Before(end) {
			return
		}
		step := end.Sub(now)
		if next, ok := l.nextDeadline(); ok && next.Before(end) {
			if s := next.Sub(now); s < step {
				step = s
			}
		}
		if step <= 0 {
			step = time.Nanosecond
		}
		mc.Add(step)
		l.RunOnce()
	}
}

// Settle advances a manual clock until only repeating intervals remain or
// limit has elapsed, and returns the time it advanced.
func (l *Loop) Settle(limit time.Duration) time.Duration {
	var elapsed time.Duration
	l.RunOnce()
	for elapsed < limit && l.Busy() {
		step := l.frameInterval
		if next, ok := l.nextDeadline(); ok {
			if s := next.Sub(l.clock.Now()); s > 0 && s < step {
				step = s
			}
		}
		if elapsed+step > limit {
			step = limit - elapsed
		}
		l.Advance(step)
		elapsed += step
	}
	return elapsed
}

// nextDeadline returns the earliest time at which a timer or frame is due.
func (l *Loop) nextDeadline() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var deadlines []time.Time
	for _, t := range l.timers {
		deadlines = append(deadlines, t.due)
	}
	if len(l.frames) > 0 {
		deadlines = append(deadlines, l.lastFrame.Add(l.frameInterval))
	}
	if len(deadlines) == 0 {
		return time.Time{}, false
	}
	sort.Slice(deadlines, func(i, j int) bool { return deadlines[i].Before(deadlines[j]) })
	return deadlines[0], true
}

// Run drives the loop in real time until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.RunOnce()
		case <-l.wake:
			l.runPosted()
		}
	}
}
