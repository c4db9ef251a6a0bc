package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kidandcat/heartquest/internal/proposal"
)

const proposalColumns = `id, creator_id, partner_name, token, nebula_color, star_color,
	music_url, music_start_time, video_url, proposal_text, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProposal(s scanner) (*proposal.Proposal, error) {
	var p proposal.Proposal
	err := s.Scan(&p.ID, &p.CreatorID, &p.PartnerName, &p.Token, &p.NebulaColor, &p.StarColor,
		&p.MusicURL, &p.MusicStartTime, &p.VideoURL, &p.ProposalText, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Proposals

func (r *Repo) CreateProposal(ctx context.Context, p *proposal.Proposal) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO proposals ("+proposalColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.CreatorID, p.PartnerName, p.Token, p.NebulaColor, p.StarColor,
		p.MusicURL, p.MusicStartTime, p.VideoURL, p.ProposalText, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}

	for i := range p.Memories {
		m := &p.Memories[i]
		if m.CreatedAt.IsZero() {
			m.CreatedAt = p.CreatedAt
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO memory_crystals (id, proposal_id, image_url, caption_text, order_index, collected, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, p.ID, m.ImageURL, m.CaptionText, m.OrderIndex, m.Collected, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert memory: %w", err)
		}
	}

	for _, url := range p.GalleryImages {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO proposal_gallery (proposal_id, image_url) VALUES (?, ?)", p.ID, url)
		if err != nil {
			return fmt.Errorf("insert gallery image: %w", err)
		}
	}

	return tx.Commit()
}

func (r *Repo) GetProposal(ctx context.Context, id string) (*proposal.Proposal, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+proposalColumns+" FROM proposals WHERE id = ?", id)
	return r.loadProposal(ctx, row)
}

func (r *Repo) GetProposalByToken(ctx context.Context, token string) (*proposal.Proposal, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+proposalColumns+" FROM proposals WHERE token = ?", token)
	return r.loadProposal(ctx, row)
}

func (r *Repo) loadProposal(ctx context.Context, row *sql.Row) (*proposal.Proposal, error) {
	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, proposal.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query proposal: %w", err)
	}

	p.Memories, err = r.memories(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.GalleryImages, err = r.gallery(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repo) TokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM proposals WHERE token = ?)", token).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query token: %w", err)
	}
	return exists, nil
}

func (r *Repo) ListProposals(ctx context.Context, creatorID string) ([]proposal.Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+proposalColumns+`,
			(SELECT COUNT(*) FROM memory_crystals m WHERE m.proposal_id = proposals.id)
		FROM proposals WHERE creator_id = ? ORDER BY created_at DESC`,
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	defer rows.Close()

	var list []proposal.Summary
	for rows.Next() {
		var s proposal.Summary
		p := &s.Proposal
		err := rows.Scan(&p.ID, &p.CreatorID, &p.PartnerName, &p.Token, &p.NebulaColor, &p.StarColor,
			&p.MusicURL, &p.MusicStartTime, &p.VideoURL, &p.ProposalText, &p.CreatedAt, &s.MemoryCount)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// DeleteProposal removes the proposal; memories and gallery rows cascade.
func (r *Repo) DeleteProposal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM proposals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	return affected(res, proposal.ErrNotFound)
}

func (r *Repo) gallery(ctx context.Context, proposalID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT image_url FROM proposal_gallery WHERE proposal_id = ? ORDER BY id", proposalID)
	if err != nil {
		return nil, fmt.Errorf("query gallery: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan gallery: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// Memories

const memoryColumns = "id, proposal_id, image_url, caption_text, order_index, collected, created_at"

func scanMemory(s scanner) (*proposal.Memory, error) {
	var m proposal.Memory
	if err := s.Scan(&m.ID, &m.ProposalID, &m.ImageURL, &m.CaptionText, &m.OrderIndex, &m.Collected, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) memories(ctx context.Context, proposalID string) ([]proposal.Memory, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+memoryColumns+" FROM memory_crystals WHERE proposal_id = ? ORDER BY order_index ASC",
		proposalID,
	)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var memories []proposal.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, *m)
	}
	return memories, rows.Err()
}

func (r *Repo) GetMemory(ctx context.Context, id string) (*proposal.Memory, error) {
	m, err := scanMemory(r.db.QueryRowContext(ctx,
		"SELECT "+memoryColumns+" FROM memory_crystals WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, proposal.ErrMemoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query memory: %w", err)
	}
	return m, nil
}

// MarkMemoryCollected sets the flag. Marking twice is not an error.
func (r *Repo) MarkMemoryCollected(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE memory_crystals SET collected = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	return affected(res, proposal.ErrMemoryNotFound)
}

func (r *Repo) UpdateCaption(ctx context.Context, id, caption string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE memory_crystals SET caption_text = ? WHERE id = ?", caption, id)
	if err != nil {
		return fmt.Errorf("update caption: %w", err)
	}
	return affected(res, proposal.ErrMemoryNotFound)
}

// DeleteMemory removes one memory and closes the gap in its proposal's
// order so indices stay dense.
func (r *Repo) DeleteMemory(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var proposalID string
	var order int
	err = tx.QueryRowContext(ctx,
		"SELECT proposal_id, order_index FROM memory_crystals WHERE id = ?", id).Scan(&proposalID, &order)
	if errors.Is(err, sql.ErrNoRows) {
		return proposal.ErrMemoryNotFound
	}
	if err != nil {
		return fmt.Errorf("query memory: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM memory_crystals WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE memory_crystals SET order_index = order_index - 1 WHERE proposal_id = ? AND order_index > ?",
		proposalID, order)
	if err != nil {
		return fmt.Errorf("compact order: %w", err)
	}

	return tx.Commit()
}

func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
