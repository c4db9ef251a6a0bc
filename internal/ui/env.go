// Package ui holds the go-app components of the browser client: the token
// entry screen, the two scene players and the creator tools.
package ui

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/client"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/scene"
)

// Env is what the components share. main configures it once before the
// app starts.
type Env struct {
	Client *client.Client
	Log    *zap.Logger
	// NewSound returns a fresh mixer for a scene; the scene closes it.
	NewSound func() scene.Sound
	// Play outputs speech.
	Play client.PlayFunc
}

var env = Env{Log: zap.NewNop()}

func Configure(e Env) {
	if e.Log == nil {
		e.Log = zap.NewNop()
	}
	if e.Client == nil {
		e.Client = client.New("", nil, e.Log)
	}
	env = e
}

const creatorTokenKey = "heartquest.creator_token"

// handoff keeps the proposal the entry screen resolved so the scene does
// not fetch it twice.
type handoff struct {
	mu sync.Mutex
	p  *proposal.Proposal
}

var resolved handoff

func (h *handoff) put(p *proposal.Proposal) {
	h.mu.Lock()
	h.p = p
	h.mu.Unlock()
}

// Resolve serves the held proposal once when the token matches and asks
// the server otherwise.
func (h *handoff) Resolve(ctx context.Context, token string) (*proposal.Proposal, error) {
	h.mu.Lock()
	p := h.p
	if p != nil && p.Token == proposal.NormalizeToken(token) {
		h.p = nil
		h.mu.Unlock()
		return p, nil
	}
	h.mu.Unlock()
	return env.Client.Resolve(ctx, token)
}
