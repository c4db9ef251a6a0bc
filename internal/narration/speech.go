package narration

import (
	"context"
	"errors"
	"io"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrUnavailable means speech was short-circuited by the breaker.
var ErrUnavailable = errors.New("narration: speech temporarily unavailable")

// Synthesizer renders text to an mp3 stream.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// Voice guards a Synthesizer with its own breaker. A nil synthesizer
// reports ErrDisabled.
type Voice struct {
	syn Synthesizer
	cb  *gobreaker.CircuitBreaker
	log *zap.Logger
}

func NewVoice(syn Synthesizer, cb *gobreaker.CircuitBreaker, log *zap.Logger) *Voice {
	return &Voice{syn: syn, cb: cb, log: log}
}

func (v *Voice) Enabled() bool { return v != nil && v.syn != nil }

// Synthesize returns the audio body. The caller closes it.
func (v *Voice) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if !v.Enabled() {
		return nil, ErrDisabled
	}
	res, err := v.cb.Execute(func() (interface{}, error) {
		return v.syn.Synthesize(ctx, text)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrUnavailable
	case err != nil:
		v.log.Warn("speech synthesis failed", zap.Error(err))
		return nil, err
	}
	return res.(io.ReadCloser), nil
}
