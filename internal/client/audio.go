package client

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gopxl/beep"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/audio"
)

// Music fetches and decodes a track. It has the shape of scene.MusicSource.
func (c *Client) Music(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error) {
	data, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return audio.Decode(url, data)
}

// PlayFunc plays s and calls done when it drains.
type PlayFunc func(s beep.Streamer, format beep.Format, done func())

// Speaker reads narration aloud with server-side speech. When the server
// has speech disabled it goes quiet for the rest of the page's life and
// completes every line at once.
type Speaker struct {
	client   *Client
	play     PlayFunc
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	disabled atomic.Bool
}

func NewSpeaker(c *Client, play PlayFunc) *Speaker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Speaker{client: c, play: play, log: c.log, ctx: ctx, cancel: cancel}
}

func (s *Speaker) Speak(text string, onDone func()) {
	done := func() {
		if onDone != nil {
			onDone()
		}
	}
	if s.disabled.Load() || s.ctx.Err() != nil || s.play == nil {
		done()
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, Timeout)
		defer cancel()
		data, err := s.client.Speech(ctx, text)
		if err != nil {
			if statusIs(err, http.StatusServiceUnavailable) {
				s.disabled.Store(true)
			}
			s.log.Debug("speech unavailable", zap.Error(err))
			done()
			return
		}
		stream, format, err := audio.Decode("speech.mp3", data)
		if err != nil {
			s.log.Warn("speech decode failed", zap.Error(err))
			done()
			return
		}
		s.play(stream, format, func() {
			stream.Close()
			done()
		})
	}()
}

// Close stops pending requests. Lines already playing finish.
func (s *Speaker) Close() { s.cancel() }
