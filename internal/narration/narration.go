// Package narration produces the lines spoken while a partner plays.
//
// Generators may fail at any time. Callers never surface those failures:
// they fall back to Fallback, which always embeds the caption.
package narration

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// EmptyResponse is used when the model answers with nothing.
const EmptyResponse = "The echoes of the cosmos are faint, but the love shines bright."

var (
	ErrEmpty    = errors.New("narration: empty response")
	ErrDisabled = errors.New("narration: generator not configured")
)

// Generator turns a memory caption into a short narration line.
type Generator interface {
	Generate(ctx context.Context, caption, partnerName string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, caption, partnerName string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, caption, partnerName string) (string, error) {
	return f(ctx, caption, partnerName)
}

// Speaker reads text aloud. Speak must call onDone exactly once, even when
// speech is unavailable.
type Speaker interface {
	Speak(text string, onDone func())
}

// Silent is a Speaker for platforms without speech synthesis.
type Silent struct{}

func (Silent) Speak(_ string, onDone func()) {
	if onDone != nil {
		onDone()
	}
}

// Fallback is the local line used when generation fails.
func Fallback(caption string) string {
	return fmt.Sprintf("The stars whisper... but this memory is too precious for words alone. (\"%s\")", caption)
}

// Clean trims a model answer and substitutes EmptyResponse for blanks.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyResponse
	}
	return text
}

// Welcome lines per scene.
func OdysseyWelcome(partner string) string {
	return fmt.Sprintf("Welcome, %s, to your Galactic Memory Odyssey. I am Astra-Glow, your guide through the stardust of shared moments. Collect the shimmering crystals to unveil our journey's constellations.", partner)
}

func CityWelcome(partner string) string {
	return fmt.Sprintf("Welcome to the City of Eternal Love, %s. Use W, A, S, D to explore the avenues. Click anywhere to look around.", partner)
}

const (
	OdysseyReveal = "The stars align, revealing our ultimate destiny..."
	OdysseyFinale = "YES! Our journey continues for eternity!"
	CityReveal    = "The memories are united. The Palace Gates open for the final question..."
	CityFinale    = "Welcome home, forever. The city is yours to explore."
)

// CollectedLine is shown while the generated narration is on its way.
func CollectedLine(orderIndex int) string {
	return fmt.Sprintf("Memory %d collected!", orderIndex+1)
}
