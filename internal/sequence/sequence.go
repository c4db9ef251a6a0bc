// Package sequence runs scripted, timed steps off the frame clock.
//
// A Runner never starts goroutines or timers of its own. The owning scene
// calls Advance once per frame with the elapsed time; steps fire in order
// from inside that call, so cancelling a sequence is just not advancing it
// again.
package sequence

import (
	"sort"
	"time"
)

type State int

const (
	Idle State = iota
	Running
	Waiting
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Waiting:
		return "waiting"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Step fires once the sequence clock reaches At. A step with Wait holds the
// sequence clock until the resume callback handed to Wait is called; later
// steps shift by however long that took.
type Step struct {
	At   time.Duration
	Name string
	Do   func()
	Wait func(resume func())
}

type Runner struct {
	steps   []Step
	next    int
	elapsed time.Duration
	state   State
	gen     int
	onDone  func()
	onStep  func(name string)
}

func New(steps ...Step) *Runner {
	s := make([]Step, len(steps))
	copy(s, steps)
	sort.SliceStable(s, func(i, j int) bool { return s[i].At < s[j].At })
	return &Runner{steps: s}
}

// OnDone registers fn to run after the last step fires.
func (r *Runner) OnDone(fn func()) *Runner {
	r.onDone = fn
	return r
}

// OnStep registers an observer called with each step name as it fires.
func (r *Runner) OnStep(fn func(name string)) *Runner {
	r.onStep = fn
	return r
}

// Start arms the sequence and fires any steps scheduled at zero.
func (r *Runner) Start() {
	if r.state != Idle {
		return
	}
	r.state = Running
	r.fire()
}

// Advance moves the sequence clock forward by dt and fires due steps.
func (r *Runner) Advance(dt time.Duration) {
	if r.state != Running {
		return
	}
	r.elapsed += dt
	r.fire()
}

func (r *Runner) fire() {
	for r.state == Running && r.next < len(r.steps) && r.steps[r.next].At <= r.elapsed {
		st := r.steps[r.next]
		r.next++
		if r.onStep != nil {
			r.onStep(st.Name)
		}
		if st.Do != nil {
			st.Do()
		}
		if st.Wait != nil && r.state == Running {
			r.hold(st)
		}
	}
	if r.state == Running && r.next >= len(r.steps) {
		r.state = Done
		if r.onDone != nil {
			r.onDone()
		}
	}
}

func (r *Runner) hold(st Step) {
	r.state = Waiting
	gen := r.gen
	resumed := false
	st.Wait(func() {
		if resumed || gen != r.gen || r.state != Waiting {
			return
		}
		resumed = true
		r.state = Running
		r.elapsed = st.At
		r.fire()
	})
}

// Cancel stops the sequence. Pending steps never fire and late resume
// callbacks are ignored.
func (r *Runner) Cancel() {
	if r.state == Done || r.state == Cancelled {
		return
	}
	r.state = Cancelled
	r.gen++
}

func (r *Runner) State() State { return r.state }

func (r *Runner) Elapsed() time.Duration { return r.elapsed }

func (r *Runner) Finished() bool { return r.state == Done }

func (r *Runner) Active() bool { return r.state == Running || r.state == Waiting }
