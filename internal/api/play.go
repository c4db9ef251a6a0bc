package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/narration"
	"github.com/kidandcat/heartquest/internal/proposal"
)

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if strings.TrimSpace(token) == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}

	p, err := s.Proposals.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, proposal.ErrNotFound) {
			s.Metrics.Resolved(false)
		}
		s.fail(w, r, err)
		return
	}
	s.Metrics.Resolved(true)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCollected(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Collected *bool `json:"collected"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Collected == nil {
		writeError(w, http.StatusBadRequest, "collected required")
		return
	}

	if err := s.Proposals.SetCollected(r.Context(), r.PathValue("id"), *req.Collected); err != nil {
		s.fail(w, r, err)
		return
	}
	s.Metrics.MemoriesCollected.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// handleNarration never fails because the model did: the fallback line is
// returned with fallback set.
func (s *Server) handleNarration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caption     string `json:"caption"`
		PartnerName string `json:"partner_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Caption = proposal.NormalizeText(req.Caption)
	if req.Caption == "" {
		writeError(w, http.StatusBadRequest, "caption required")
		return
	}

	text, outcome := s.Narrator.Narrate(r.Context(), req.Caption, proposal.NormalizeText(req.PartnerName))
	writeJSON(w, http.StatusOK, map[string]any{
		"text":     text,
		"fallback": outcome != narration.OutcomeOK,
	})
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" || len(req.Text) > maxSpeech {
		writeError(w, http.StatusBadRequest, "text must be 1-1000 characters")
		return
	}

	audio, err := s.Voice.Synthesize(r.Context(), req.Text)
	switch {
	case errors.Is(err, narration.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "speech disabled")
		return
	case errors.Is(err, narration.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "speech temporarily unavailable")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "speech failed")
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.Copy(w, audio); err != nil {
		s.Log.Warn("speech stream interrupted", zap.Error(err))
	}
}
