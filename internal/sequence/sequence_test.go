package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerFiresInOrder(t *testing.T) {
	var fired []string
	r := New(
		Step{At: 1000 * time.Millisecond, Name: "text", Do: func() { fired = append(fired, "text") }},
		Step{At: 0, Name: "burst", Do: func() { fired = append(fired, "burst") }},
		Step{At: 800 * time.Millisecond, Name: "video", Do: func() { fired = append(fired, "video") }},
	)
	done := false
	r.OnDone(func() { done = true })

	r.Start()
	assert.Equal(t, []string{"burst"}, fired)

	r.Advance(799 * time.Millisecond)
	assert.Equal(t, []string{"burst"}, fired)

	r.Advance(time.Millisecond)
	assert.Equal(t, []string{"burst", "video"}, fired)
	assert.False(t, done)

	r.Advance(500 * time.Millisecond)
	assert.Equal(t, []string{"burst", "video", "text"}, fired)
	assert.True(t, done)
	assert.Equal(t, Done, r.State())

	r.Advance(time.Hour)
	assert.Len(t, fired, 3)
}

func TestRunnerLargeFrameFiresEverythingOnce(t *testing.T) {
	count := 0
	r := New(
		Step{At: 10 * time.Millisecond, Do: func() { count++ }},
		Step{At: 20 * time.Millisecond, Do: func() { count++ }},
	)
	r.Start()
	r.Advance(time.Second)
	r.Advance(time.Second)
	assert.Equal(t, 2, count)
	assert.True(t, r.Finished())
}

func TestRunnerCancel(t *testing.T) {
	count := 0
	doneCalled := false
	r := New(
		Step{At: 0, Do: func() { count++ }},
		Step{At: 100 * time.Millisecond, Do: func() { count++ }},
	).OnDone(func() { doneCalled = true })
	r.Start()
	r.Cancel()
	r.Advance(time.Second)
	assert.Equal(t, 1, count)
	assert.False(t, doneCalled)
	assert.Equal(t, Cancelled, r.State())
}

func TestRunnerWaitHoldsClock(t *testing.T) {
	var resume func()
	var fired []string
	r := New(
		Step{At: 0, Name: "speak", Wait: func(done func()) { resume = done }},
		Step{At: 50 * time.Millisecond, Name: "after", Do: func() { fired = append(fired, "after") }},
	)
	r.Start()
	require.NotNil(t, resume)
	assert.Equal(t, Waiting, r.State())

	r.Advance(time.Second)
	assert.Empty(t, fired, "clock is held while waiting")

	resume()
	assert.Equal(t, Running, r.State())
	r.Advance(49 * time.Millisecond)
	assert.Empty(t, fired)
	r.Advance(time.Millisecond)
	assert.Equal(t, []string{"after"}, fired)

	resume()
	assert.True(t, r.Finished())
}

func TestRunnerResumeAfterCancelIgnored(t *testing.T) {
	var resume func()
	after := false
	r := New(
		Step{At: 0, Wait: func(done func()) { resume = done }},
		Step{At: 0, Do: func() { after = true }},
	)
	r.Start()
	r.Cancel()
	resume()
	r.Advance(time.Second)
	assert.False(t, after)
}

func TestRunnerSynchronousResume(t *testing.T) {
	doneCount := 0
	r := New(
		Step{At: 0, Wait: func(done func()) { done() }},
		Step{At: 0, Do: func() {}},
	).OnDone(func() { doneCount++ })
	r.Start()
	assert.True(t, r.Finished())
	assert.Equal(t, 1, doneCount)
}

func TestRunnerOnStep(t *testing.T) {
	var names []string
	r := New(Step{Name: "a"}, Step{At: time.Millisecond, Name: "b"}).OnStep(func(n string) { names = append(names, n) })
	r.Start()
	r.Advance(time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, names)
}
