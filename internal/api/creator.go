package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/auth"
	"github.com/kidandcat/heartquest/internal/media"
	"github.com/kidandcat/heartquest/internal/proposal"
)

const (
	multipartMemory = 32 << 20
	devTokenTTL     = 24 * time.Hour
)

// summaryView is a listed proposal with its age spelled out.
type summaryView struct {
	proposal.Summary
	CreatedAgo string `json:"created_ago"`
}

func creator(r *http.Request) string {
	id, _ := auth.CreatorID(r)
	return id
}

// uploads tracks stored objects so a failed create can remove them.
type uploads struct {
	bucket media.Bucket
	urls   []string
	bytes  int64
}

func (u *uploads) put(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	url, err := u.bucket.Put(ctx, media.ObjectName(folder, fh.Filename), fh.Header.Get("Content-Type"), f)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", fh.Filename, err)
	}
	u.urls = append(u.urls, url)
	u.bytes += fh.Size
	return url, nil
}

func formValues(form *multipart.Form, key string) []string {
	if v := form.Value[key+"[]"]; len(v) > 0 {
		return v
	}
	return form.Value[key]
}

func formFiles(form *multipart.Form, key string) []*multipart.FileHeader {
	if f := form.File[key+"[]"]; len(f) > 0 {
		return f
	}
	return form.File[key]
}

func formFile(form *multipart.Form, key string) *multipart.FileHeader {
	if f := form.File[key]; len(f) > 0 {
		return f[0]
	}
	return nil
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.MaxUpload {
		writeError(w, http.StatusRequestEntityTooLarge,
			"upload exceeds "+humanize.Bytes(uint64(s.MaxUpload)))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge,
				"upload exceeds "+humanize.Bytes(uint64(s.MaxUpload)))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()
	form := r.MultipartForm

	d := proposal.Draft{
		PartnerName:  r.FormValue("partner_name"),
		NebulaColor:  r.FormValue("nebula_color"),
		StarColor:    r.FormValue("star_color"),
		ProposalText: r.FormValue("proposal_text"),
		MusicURL:     strings.TrimSpace(r.FormValue("music_url")),
		VideoURL:     strings.TrimSpace(r.FormValue("video_url")),
		Gallery:      []string{},
	}
	if raw := strings.TrimSpace(r.FormValue("music_start_time")); raw != "" {
		start, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.fail(w, r, &proposal.ValidationError{Fields: []string{"music_start_time"}})
			return
		}
		d.MusicStartTime = start
	}
	for _, c := range formValues(form, "captions") {
		d.Memories = append(d.Memories, proposal.MemoryDraft{Caption: c})
	}
	images := formFiles(form, "images")
	if len(images) > len(d.Memories) {
		s.fail(w, r, &proposal.ValidationError{Fields: []string{"images"}})
		return
	}

	// Reject bad input before anything is stored.
	if err := d.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	up := &uploads{bucket: s.Bucket}
	store := func() error {
		if up.bucket == nil && len(form.File) > 0 {
			return errors.New("no media bucket configured")
		}
		for i, fh := range images {
			url, err := up.put(r.Context(), "memories", fh)
			if err != nil {
				return err
			}
			d.Memories[i].ImageURL = url
		}
		for _, fh := range formFiles(form, "gallery") {
			url, err := up.put(r.Context(), "gallery", fh)
			if err != nil {
				return err
			}
			d.Gallery = append(d.Gallery, url)
		}
		if fh := formFile(form, "music"); fh != nil {
			url, err := up.put(r.Context(), "music", fh)
			if err != nil {
				return err
			}
			d.MusicURL = url
		}
		if fh := formFile(form, "video"); fh != nil {
			url, err := up.put(r.Context(), "video", fh)
			if err != nil {
				return err
			}
			d.VideoURL = url
		}
		return nil
	}
	if err := store(); err != nil {
		s.discard(r.Context(), up.urls)
		s.fail(w, r, err)
		return
	}

	p, err := s.Proposals.Create(r.Context(), creator(r), d)
	if err != nil {
		s.discard(r.Context(), up.urls)
		s.fail(w, r, err)
		return
	}
	s.Metrics.ProposalsCreated.Inc()
	s.Metrics.UploadBytes.Add(float64(up.bytes))
	writeJSON(w, http.StatusCreated, p)
}

// discard removes stored objects best-effort.
func (s *Server) discard(ctx context.Context, urls []string) {
	if s.Bucket == nil || len(urls) == 0 {
		return
	}
	if err := s.Bucket.Remove(context.WithoutCancel(ctx), urls); err != nil {
		s.Log.Warn("media cleanup incomplete", zap.Int("objects", len(urls)), zap.Error(err))
	}
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	list, err := s.Proposals.List(r.Context(), creator(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]summaryView, 0, len(list))
	for _, p := range list {
		out = append(out, summaryView{Summary: p, CreatedAgo: humanize.Time(p.CreatedAt)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteProposal(w http.ResponseWriter, r *http.Request) {
	p, err := s.Proposals.Delete(r.Context(), creator(r), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var urls []string
	for _, u := range append([]string{p.MusicURL, p.VideoURL}, p.GalleryImages...) {
		if u != "" {
			urls = append(urls, u)
		}
	}
	for _, m := range p.Memories {
		if m.ImageURL != "" {
			urls = append(urls, m.ImageURL)
		}
	}
	s.discard(r.Context(), urls)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	m, err := s.Proposals.DeleteMemory(r.Context(), creator(r), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if m.ImageURL != "" {
		s.discard(r.Context(), []string{m.ImageURL})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateCaption(w http.ResponseWriter, r *http.Request) {
	var u proposal.CaptionUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	m, err := s.Proposals.UpdateCaption(r.Context(), creator(r), r.PathValue("id"), u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleDevLogin issues a creator token without an identity service.
func (s *Server) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatorID string `json:"creator_id"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if req.CreatorID == "" {
		req.CreatorID = uuid.NewString()
	}
	token, err := s.Verifier.Issue(req.CreatorID, devTokenTTL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "creator_id": req.CreatorID})
}
