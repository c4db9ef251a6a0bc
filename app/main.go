package main

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kidandcat/heartquest/internal/audio"
	"github.com/kidandcat/heartquest/internal/client"
	"github.com/kidandcat/heartquest/internal/scene"
	"github.com/kidandcat/heartquest/internal/ui"
)

// untilClosed drains once the scene has closed its engine so the speaker
// mixer drops it.
type untilClosed struct {
	*audio.Engine
}

func (u untilClosed) Stream(samples [][2]float64) (int, bool) {
	if u.Closed() {
		return 0, false
	}
	return u.Engine.Stream(samples)
}

func main() {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		log = zap.NewNop()
	}

	var (
		once    sync.Once
		speakOK bool
	)
	play := func(s beep.Streamer) bool {
		once.Do(func() {
			if err := speaker.Init(audio.SampleRate, audio.SampleRate.N(100*time.Millisecond)); err != nil {
				log.Warn("audio output unavailable", zap.Error(err))
				return
			}
			speakOK = true
		})
		if speakOK {
			speaker.Play(s)
		}
		return speakOK
	}

	if app.IsClient {
		ui.Configure(ui.Env{
			Client: client.New("", nil, log),
			Log:    log,
			NewSound: func() scene.Sound {
				eng := audio.NewEngine(audio.SampleRate, log.Named("audio"))
				play(untilClosed{eng})
				return eng
			},
			Play: func(s beep.Streamer, format beep.Format, done func()) {
				if !play(beep.Seq(beep.Resample(4, format.SampleRate, audio.SampleRate, s), beep.Callback(done))) {
					done()
				}
			},
		})
	}

	ui.Routes()
	app.RunWhenOnBrowser()
}
