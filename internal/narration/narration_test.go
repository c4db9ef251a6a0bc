package narration

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFallbackEmbedsCaption(t *testing.T) {
	got := Fallback("Picnic under the cherry tree")
	assert.Equal(t, `The stars whisper... but this memory is too precious for words alone. ("Picnic under the cherry tree")`, got)

	for _, caption := range []string{`She said "yes"`, "Line one\nLine two", `C:\beach`} {
		assert.Contains(t, Fallback(caption), caption)
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, EmptyResponse, Clean(" \n "))
	assert.Equal(t, "hi", Clean(" hi "))
}

func TestSilentCallsOnDone(t *testing.T) {
	done := 0
	Silent{}.Speak("hello", func() { done++ })
	assert.Equal(t, 1, done)
	assert.NotPanics(t, func() { Silent{}.Speak("hello", nil) })
}

func TestGuard(t *testing.T) {
	log := zap.NewNop()

	t.Run("ok", func(t *testing.T) {
		gen := GeneratorFunc(func(context.Context, string, string) (string, error) { return " A line. ", nil })
		g := NewGuard(gen, NewBreaker(DefaultBreakerConfig("test"), log), time.Second, log)
		text, out := g.Narrate(context.Background(), "cap", "Ana")
		assert.Equal(t, "A line.", text)
		assert.Equal(t, OutcomeOK, out)
	})

	t.Run("failure falls back", func(t *testing.T) {
		gen := GeneratorFunc(func(context.Context, string, string) (string, error) { return "", errors.New("boom") })
		g := NewGuard(gen, NewBreaker(DefaultBreakerConfig("test"), log), time.Second, log)
		text, out := g.Narrate(context.Background(), "cap", "Ana")
		assert.Equal(t, Fallback("cap"), text)
		assert.Equal(t, OutcomeFallback, out)
	})

	t.Run("breaker opens", func(t *testing.T) {
		calls := 0
		gen := GeneratorFunc(func(context.Context, string, string) (string, error) {
			calls++
			return "", errors.New("boom")
		})
		cfg := DefaultBreakerConfig("test")
		cfg.MinRequests = 3
		g := NewGuard(gen, NewBreaker(cfg, log), time.Second, log)

		var outcomes []Outcome
		g.Observe(func(o Outcome) { outcomes = append(outcomes, o) })
		for i := 0; i < 5; i++ {
			text, _ := g.Narrate(context.Background(), "cap", "Ana")
			assert.Contains(t, text, "cap")
		}
		assert.Equal(t, 3, calls)
		assert.Equal(t, []Outcome{OutcomeFallback, OutcomeFallback, OutcomeFallback, OutcomeBreakerOpen, OutcomeBreakerOpen}, outcomes)
	})

	t.Run("timeout", func(t *testing.T) {
		gen := GeneratorFunc(func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		g := NewGuard(gen, NewBreaker(DefaultBreakerConfig("test"), log), 10*time.Millisecond, log)
		text, out := g.Narrate(context.Background(), "cap", "Ana")
		assert.Equal(t, Fallback("cap"), text)
		assert.Equal(t, OutcomeFallback, out)
	})

	t.Run("no generator", func(t *testing.T) {
		g := NewGuard(nil, nil, 0, log)
		text, out := g.Narrate(context.Background(), "cap", "Ana")
		assert.Equal(t, Fallback("cap"), text)
		assert.Equal(t, OutcomeFallback, out)
	})
}

type synthFunc func(ctx context.Context, text string) (io.ReadCloser, error)

func (f synthFunc) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	return f(ctx, text)
}

func TestVoice(t *testing.T) {
	log := zap.NewNop()

	t.Run("disabled", func(t *testing.T) {
		var v *Voice
		assert.False(t, v.Enabled())
		_, err := NewVoice(nil, nil, log).Synthesize(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrDisabled)
	})

	t.Run("audio", func(t *testing.T) {
		syn := synthFunc(func(_ context.Context, text string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("mp3:" + text)), nil
		})
		v := NewVoice(syn, NewBreaker(DefaultBreakerConfig("speech"), log), log)
		rc, err := v.Synthesize(context.Background(), "hi")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "mp3:hi", string(data))
	})

	t.Run("breaker opens", func(t *testing.T) {
		syn := synthFunc(func(context.Context, string) (io.ReadCloser, error) {
			return nil, errors.New("quota")
		})
		cfg := DefaultBreakerConfig("speech")
		cfg.MinRequests = 2
		v := NewVoice(syn, NewBreaker(cfg, log), log)
		for i := 0; i < 2; i++ {
			_, err := v.Synthesize(context.Background(), "hi")
			assert.EqualError(t, err, "quota")
		}
		_, err := v.Synthesize(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
