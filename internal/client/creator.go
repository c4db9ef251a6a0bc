package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kidandcat/heartquest/internal/proposal"
)

// File is an upload picked in the creator panel.
type File struct {
	Name string
	Data []byte
}

// Submission is the creator form. Images align with Captions by index and
// may be shorter.
type Submission struct {
	PartnerName    string
	NebulaColor    string
	StarColor      string
	ProposalText   string
	MusicURL       string
	MusicStartTime float64
	VideoURL       string
	Captions       []string
	Images         []File
	Gallery        []File
	Music          *File
	Video          *File
}

// Listed is a proposal as shown on the creator's list.
type Listed struct {
	proposal.Proposal
	MemoryCount int    `json:"memory_count"`
	CreatedAgo  string `json:"created_ago"`
}

func (s Submission) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ k, v string }{
		{"partner_name", s.PartnerName},
		{"nebula_color", s.NebulaColor},
		{"star_color", s.StarColor},
		{"proposal_text", s.ProposalText},
		{"music_url", s.MusicURL},
		{"video_url", s.VideoURL},
	}
	if s.MusicStartTime > 0 {
		fields = append(fields, struct{ k, v string }{"music_start_time", strconv.FormatFloat(s.MusicStartTime, 'f', -1, 64)})
	}
	for _, f := range fields {
		if f.v == "" {
			continue
		}
		if err := mw.WriteField(f.k, f.v); err != nil {
			return nil, "", err
		}
	}
	for _, c := range s.Captions {
		if err := mw.WriteField("captions[]", c); err != nil {
			return nil, "", err
		}
	}

	files := func(field string, fs ...File) error {
		for _, f := range fs {
			w, err := mw.CreateFormFile(field, f.Name)
			if err != nil {
				return err
			}
			if _, err := w.Write(f.Data); err != nil {
				return err
			}
		}
		return nil
	}
	if err := files("images[]", s.Images...); err != nil {
		return nil, "", err
	}
	if err := files("gallery[]", s.Gallery...); err != nil {
		return nil, "", err
	}
	if s.Music != nil {
		if err := files("music", *s.Music); err != nil {
			return nil, "", err
		}
	}
	if s.Video != nil {
		if err := files("video", *s.Video); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) CreateProposal(ctx context.Context, s Submission) (*proposal.Proposal, error) {
	if len(s.Images) > len(s.Captions) {
		return nil, fmt.Errorf("%d images for %d captions", len(s.Images), len(s.Captions))
	}
	body, ctype, err := s.encode()
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/proposals", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ctype)

	var p proposal.Proposal
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListProposals(ctx context.Context) ([]Listed, error) {
	var out []Listed
	if err := c.doJSON(ctx, http.MethodGet, "/api/proposals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteProposal(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/proposals/"+url.PathEscape(id), nil, nil)
}

func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/memories/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpdateCaption(ctx context.Context, id, caption string) (*proposal.Memory, error) {
	var m proposal.Memory
	err := c.doJSON(ctx, http.MethodPut, "/api/memories/"+url.PathEscape(id),
		proposal.CaptionUpdate{Caption: caption}, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DevLogin obtains a creator token from a server running in dev mode and
// keeps it for later calls.
func (c *Client) DevLogin(ctx context.Context, creatorID string) (string, error) {
	var out struct {
		Token     string `json:"token"`
		CreatorID string `json:"creator_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/dev/login", map[string]string{"creator_id": creatorID}, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.CreatorID, nil
}
