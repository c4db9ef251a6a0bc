package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/auth"
	"github.com/kidandcat/heartquest/internal/media"
	"github.com/kidandcat/heartquest/internal/metrics"
	"github.com/kidandcat/heartquest/internal/narration"
	"github.com/kidandcat/heartquest/internal/proposal"
)

const (
	maxJSONBody = 1 << 20
	maxSpeech   = 1000
)

// Deps are the collaborators behind the HTTP API. Voice and Verifier may
// be nil: speech answers 503 and creator routes stay closed.
type Deps struct {
	Proposals *proposal.Service
	Narrator  *narration.Guard
	Voice     *narration.Voice
	Bucket    media.Bucket
	Verifier  *auth.Verifier
	Metrics   *metrics.Collector
	Log       *zap.Logger
	MaxUpload int64
	Dev       bool
}

type Server struct {
	Deps
}

func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	return &Server{Deps: d}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Partner
	mux.HandleFunc("GET /api/proposals/resolve", s.handleResolve)
	mux.HandleFunc("PUT /api/memories/{id}/collected", s.handleCollected)
	mux.HandleFunc("POST /api/narration", s.handleNarration)
	mux.HandleFunc("POST /api/speech", s.handleSpeech)

	// Creator
	creator := auth.Require(s.Verifier, writeError)
	mux.Handle("POST /api/proposals", creator(http.HandlerFunc(s.handleCreateProposal)))
	mux.Handle("GET /api/proposals", creator(http.HandlerFunc(s.handleListProposals)))
	mux.Handle("DELETE /api/proposals/{id}", creator(http.HandlerFunc(s.handleDeleteProposal)))
	mux.Handle("PUT /api/memories/{id}", creator(http.HandlerFunc(s.handleUpdateCaption)))
	mux.Handle("DELETE /api/memories/{id}", creator(http.HandlerFunc(s.handleDeleteMemory)))
	if s.Dev && s.Verifier != nil {
		mux.HandleFunc("POST /api/dev/login", s.handleDevLogin)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// fail maps domain errors to responses. Anything unexpected is logged and
// reported as an internal error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *proposal.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid fields",
			"fields": verr.Fields,
		})
	case errors.Is(err, proposal.ErrNotFound):
		writeError(w, http.StatusNotFound, "proposal not found")
	case errors.Is(err, proposal.ErrMemoryNotFound):
		writeError(w, http.StatusNotFound, "memory not found")
	case errors.Is(err, proposal.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, proposal.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "invalid token format")
	case errors.Is(err, proposal.ErrUncollect):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
