// Package session holds the live state of one playthrough.
//
// A Store is owned by the scene that created it. Reads are open to anyone
// holding the store; writes go through the methods below, which the phase
// controller and the interaction layer call from the frame loop.
package session

import (
	"sync"

	"github.com/kidandcat/heartquest/internal/proposal"
)

type Phase string

const (
	PhaseLoading  Phase = "LOADING"
	PhaseEntry    Phase = "ENTRY"
	PhasePlaying  Phase = "PLAYING"
	PhaseReveal   Phase = "REVEAL"
	PhaseProposal Phase = "PROPOSAL"
	PhaseFinale   Phase = "FINALE"
)

// rank orders the in-scene phases along the transition graph.
var rank = map[Phase]int{
	PhaseEntry:    0,
	PhaseLoading:  1,
	PhasePlaying:  2,
	PhaseReveal:   3,
	PhaseProposal: 4,
	PhaseFinale:   5,
}

// Before reports whether p comes strictly earlier than q.
func (p Phase) Before(q Phase) bool { return rank[p] < rank[q] }

type Store struct {
	mu        sync.RWMutex
	phase     Phase
	proposal  *proposal.Proposal
	collected map[string]struct{}
	order     []string
	narrative string
	loading   bool
}

func New() *Store {
	return &Store{
		phase:     PhaseLoading,
		collected: make(map[string]struct{}),
		loading:   true,
	}
}

func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Advance moves to p unless p comes before the current phase. Going back
// is only possible through Reset.
func (s *Store) Advance(p Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Before(s.phase) {
		return false
	}
	s.phase = p
	return true
}

func (s *Store) Proposal() *proposal.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proposal
}

// SetProposal binds the playthrough to p and clears per-proposal state.
// Memories already flagged collected on the backend are not carried over:
// each session starts with an empty collected set.
func (s *Store) SetProposal(p *proposal.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposal = p
	s.collected = make(map[string]struct{})
	s.order = nil
}

func (s *Store) Narrative() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.narrative
}

func (s *Store) SetNarrative(text string) {
	s.mu.Lock()
	s.narrative = text
	s.mu.Unlock()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// MarkCollected adds id to the collected set. It returns false when id was
// already collected or is not a memory of the bound proposal.
func (s *Store) MarkCollected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proposal == nil {
		return false
	}
	if _, ok := s.proposal.Memory(id); !ok {
		return false
	}
	if _, ok := s.collected[id]; ok {
		return false
	}
	s.collected[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *Store) IsCollected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collected[id]
	return ok
}

func (s *Store) CollectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collected)
}

// Collected returns the ids in the order they were collected.
func (s *Store) Collected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) TotalMemories() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.proposal == nil {
		return 0
	}
	return len(s.proposal.Memories)
}

// Complete reports whether every memory of the bound proposal is collected.
// Without a proposal nothing is complete.
func (s *Store) Complete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proposal != nil && len(s.proposal.Memories) > 0 && len(s.collected) == len(s.proposal.Memories)
}

// Reset returns the store to its pre-entry state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseEntry
	s.proposal = nil
	s.collected = make(map[string]struct{})
	s.order = nil
	s.narrative = ""
	s.loading = false
}
