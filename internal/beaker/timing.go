package beaker

import "time"

const (
	BatchStagger       = 50 * time.Millisecond
	ColorTransition    = 400 * time.Millisecond
	MinTransitionDelay = 16 * time.Millisecond // one frame, so the old color is drawn at least once
)

// Timing assigns animation metadata to the particles of a Diff. It never
// affects which particles exist or where they are.
type Timing interface {
	// AppearDelay is the fade-in delay of the index-th particle added by one
	// call.
	AppearDelay(index int) time.Duration
	// TransitionDuration is how long a color change should take to draw.
	TransitionDuration() time.Duration
}

// CascadeTiming staggers additions so a batch appears as a cascade.
type CascadeTiming struct {
	Stagger    time.Duration
	Transition time.Duration
}

func DefaultTiming() CascadeTiming {
	return CascadeTiming{Stagger: BatchStagger, Transition: ColorTransition}
}

func (c CascadeTiming) AppearDelay(index int) time.Duration {
	return time.Duration(index) * c.Stagger
}

func (c CascadeTiming) TransitionDuration() time.Duration { return c.Transition }

// Scheduler runs f once after d. Implementations may call f on another
// goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// TimerScheduler schedules with time.AfterFunc.
func TimerScheduler() Scheduler { return timerScheduler{} }

type immediateScheduler struct{}

func (immediateScheduler) AfterFunc(_ time.Duration, f func()) { f() }

// ImmediateScheduler runs f synchronously, for headless runs where nothing
// is drawn between the old and new color.
func ImmediateScheduler() Scheduler { return immediateScheduler{} }
