// Package supabase keeps proposals in a hosted Supabase project: rows in
// PostgREST tables and uploads in a public storage bucket.
package supabase

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/proposal"
)

// Schema creates the tables and bucket this package expects.
//
//go:embed schema.sql
var Schema string

const (
	tableProposals = "proposals"
	tableMemories  = "memory_crystals"
	tableGallery   = "proposal_gallery"
)

type proposalRow struct {
	ID             string    `json:"id"`
	CreatorID      string    `json:"creator_id"`
	PartnerName    string    `json:"partner_name"`
	Token          string    `json:"token"`
	NebulaColor    string    `json:"nebula_color"`
	StarColor      string    `json:"star_color"`
	MusicURL       string    `json:"music_url"`
	MusicStartTime float64   `json:"music_start_time"`
	VideoURL       string    `json:"video_url"`
	ProposalText   string    `json:"proposal_text"`
	CreatedAt      time.Time `json:"created_at"`
}

type countRow struct {
	Count int `json:"count"`
}

type summaryRow struct {
	proposalRow
	Memories []countRow `json:"memory_crystals"`
}

type galleryRow struct {
	ProposalID string `json:"proposal_id"`
	ImageURL   string `json:"image_url"`
}

func (r proposalRow) proposal() *proposal.Proposal {
	return &proposal.Proposal{
		ID:             r.ID,
		CreatorID:      r.CreatorID,
		PartnerName:    r.PartnerName,
		Token:          r.Token,
		NebulaColor:    r.NebulaColor,
		StarColor:      r.StarColor,
		MusicURL:       r.MusicURL,
		MusicStartTime: r.MusicStartTime,
		VideoURL:       r.VideoURL,
		ProposalText:   r.ProposalText,
		CreatedAt:      r.CreatedAt,
	}
}

// Repo implements proposal.Repository over PostgREST. The REST client
// takes no context; ctx is only checked between calls.
type Repo struct {
	client *supabase.Client
	log    *zap.Logger
}

// NewClient connects with the service role key.
func NewClient(url, key string) (*supabase.Client, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return client, nil
}

func NewRepo(client *supabase.Client, log *zap.Logger) *Repo {
	return &Repo{client: client, log: log}
}

func (r *Repo) CreateProposal(ctx context.Context, p *proposal.Proposal) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	row := proposalRow{
		ID:             p.ID,
		CreatorID:      p.CreatorID,
		PartnerName:    p.PartnerName,
		Token:          p.Token,
		NebulaColor:    p.NebulaColor,
		StarColor:      p.StarColor,
		MusicURL:       p.MusicURL,
		MusicStartTime: p.MusicStartTime,
		VideoURL:       p.VideoURL,
		ProposalText:   p.ProposalText,
		CreatedAt:      p.CreatedAt,
	}
	if _, _, err := r.client.From(tableProposals).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}

	// Without transactions a partial write is undone by deleting the
	// proposal; children cascade.
	undo := func(cause error) error {
		if _, _, err := r.client.From(tableProposals).Delete("minimal", "").Eq("id", p.ID).Execute(); err != nil {
			r.log.Error("rollback proposal failed", zap.String("proposal_id", p.ID), zap.Error(err))
		}
		return cause
	}

	if err := ctx.Err(); err != nil {
		return undo(err)
	}
	if len(p.Memories) > 0 {
		for i := range p.Memories {
			if p.Memories[i].CreatedAt.IsZero() {
				p.Memories[i].CreatedAt = p.CreatedAt
			}
		}
		if _, _, err := r.client.From(tableMemories).Insert(p.Memories, false, "", "minimal", "").Execute(); err != nil {
			return undo(fmt.Errorf("insert memories: %w", err))
		}
	}
	if len(p.GalleryImages) > 0 {
		rows := make([]galleryRow, len(p.GalleryImages))
		for i, url := range p.GalleryImages {
			rows[i] = galleryRow{ProposalID: p.ID, ImageURL: url}
		}
		if _, _, err := r.client.From(tableGallery).Insert(rows, false, "", "minimal", "").Execute(); err != nil {
			return undo(fmt.Errorf("insert gallery: %w", err))
		}
	}
	return nil
}

func (r *Repo) GetProposal(ctx context.Context, id string) (*proposal.Proposal, error) {
	return r.loadProposal(ctx, "id", id)
}

func (r *Repo) GetProposalByToken(ctx context.Context, token string) (*proposal.Proposal, error) {
	return r.loadProposal(ctx, "token", token)
}

func (r *Repo) loadProposal(ctx context.Context, column, value string) (*proposal.Proposal, error) {
	var rows []proposalRow
	if _, err := r.client.From(tableProposals).Select("*", "", false).Eq(column, value).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("query proposal: %w", err)
	}
	if len(rows) == 0 {
		return nil, proposal.ErrNotFound
	}
	p := rows[0].proposal()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := r.client.From(tableMemories).Select("*", "", false).
		Eq("proposal_id", p.ID).
		Order("order_index", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&p.Memories); err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}

	var gallery []galleryRow
	if _, err := r.client.From(tableGallery).Select("image_url", "", false).
		Eq("proposal_id", p.ID).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&gallery); err != nil {
		return nil, fmt.Errorf("query gallery: %w", err)
	}
	p.GalleryImages = make([]string, len(gallery))
	for i, g := range gallery {
		p.GalleryImages[i] = g.ImageURL
	}
	return p, nil
}

func (r *Repo) TokenExists(_ context.Context, token string) (bool, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	if _, err := r.client.From(tableProposals).Select("id", "", false).Eq("token", token).ExecuteTo(&rows); err != nil {
		return false, fmt.Errorf("query token: %w", err)
	}
	return len(rows) > 0, nil
}

func (r *Repo) ListProposals(_ context.Context, creatorID string) ([]proposal.Summary, error) {
	var rows []summaryRow
	_, err := r.client.From(tableProposals).Select("*,memory_crystals(count)", "", false).
		Eq("creator_id", creatorID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	list := make([]proposal.Summary, 0, len(rows))
	for _, row := range rows {
		s := proposal.Summary{Proposal: *row.proposal()}
		if len(row.Memories) > 0 {
			s.MemoryCount = row.Memories[0].Count
		}
		list = append(list, s)
	}
	return list, nil
}

func (r *Repo) DeleteProposal(_ context.Context, id string) error {
	body, _, err := r.client.From(tableProposals).Delete("representation", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	return touched(body, proposal.ErrNotFound)
}

func (r *Repo) GetMemory(_ context.Context, id string) (*proposal.Memory, error) {
	var rows []proposal.Memory
	if _, err := r.client.From(tableMemories).Select("*", "", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("query memory: %w", err)
	}
	if len(rows) == 0 {
		return nil, proposal.ErrMemoryNotFound
	}
	return &rows[0], nil
}

func (r *Repo) MarkMemoryCollected(_ context.Context, id string) error {
	return r.updateMemory(id, map[string]any{"collected": true})
}

func (r *Repo) UpdateCaption(_ context.Context, id, caption string) error {
	return r.updateMemory(id, map[string]any{"caption_text": caption})
}

func (r *Repo) updateMemory(id string, values map[string]any) error {
	body, _, err := r.client.From(tableMemories).Update(values, "representation", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	return touched(body, proposal.ErrMemoryNotFound)
}

// DeleteMemory removes the memory and shifts the later ones down so the
// order stays dense.
func (r *Repo) DeleteMemory(ctx context.Context, id string) error {
	m, err := r.GetMemory(ctx, id)
	if err != nil {
		return err
	}
	body, _, err := r.client.From(tableMemories).Delete("representation", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	if err := touched(body, proposal.ErrMemoryNotFound); err != nil {
		return err
	}

	var later []proposal.Memory
	_, err = r.client.From(tableMemories).Select("id,order_index", "", false).
		Eq("proposal_id", m.ProposalID).
		Gt("order_index", fmt.Sprint(m.OrderIndex)).
		Order("order_index", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&later)
	if err != nil {
		return fmt.Errorf("query later memories: %w", err)
	}
	for _, l := range later {
		if err := r.updateMemory(l.ID, map[string]any{"order_index": l.OrderIndex - 1}); err != nil {
			return fmt.Errorf("compact order: %w", err)
		}
	}
	return nil
}

// touched maps an empty representation to notFound.
func touched(body []byte, notFound error) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(rows) == 0 {
		return notFound
	}
	return nil
}
