package proposal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenAttempts = 10

// Repository is the persistence collaborator. Implementations return
// ErrNotFound / ErrMemoryNotFound for missing rows.
type Repository interface {
	CreateProposal(ctx context.Context, p *Proposal) error
	GetProposal(ctx context.Context, id string) (*Proposal, error)
	GetProposalByToken(ctx context.Context, token string) (*Proposal, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	ListProposals(ctx context.Context, creatorID string) ([]Summary, error)
	DeleteProposal(ctx context.Context, id string) error
	GetMemory(ctx context.Context, id string) (*Memory, error)
	MarkMemoryCollected(ctx context.Context, id string) error
	UpdateCaption(ctx context.Context, id, caption string) error
	DeleteMemory(ctx context.Context, id string) error
}

type Service struct {
	repo   Repository
	tokens TokenSource
	log    *zap.Logger
}

func NewService(repo Repository, tokens TokenSource, log *zap.Logger) *Service {
	if tokens == nil {
		tokens = RandomTokens()
	}
	return &Service{repo: repo, tokens: tokens, log: log}
}

// Resolve looks a proposal up by the token the partner typed.
func (s *Service) Resolve(ctx context.Context, raw string) (*Proposal, error) {
	token := NormalizeToken(raw)
	if !ValidToken(token) {
		return nil, ErrInvalidToken
	}
	p, err := s.repo.GetProposalByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	p.SortMemories()
	p.ApplyDefaults()
	return p, nil
}

func (s *Service) Create(ctx context.Context, creatorID string, d Draft) (*Proposal, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	token, err := s.allocateToken(ctx)
	if err != nil {
		return nil, err
	}

	p := &Proposal{
		ID:             uuid.NewString(),
		CreatorID:      creatorID,
		PartnerName:    d.PartnerName,
		Token:          token,
		NebulaColor:    d.NebulaColor,
		StarColor:      d.StarColor,
		MusicURL:       d.MusicURL,
		MusicStartTime: d.MusicStartTime,
		VideoURL:       d.VideoURL,
		ProposalText:   d.ProposalText,
		GalleryImages:  d.Gallery,
	}
	for i, md := range d.Memories {
		p.Memories = append(p.Memories, Memory{
			ID:          uuid.NewString(),
			ProposalID:  p.ID,
			ImageURL:    md.ImageURL,
			CaptionText: md.Caption,
			OrderIndex:  i,
		})
	}
	p.ApplyDefaults()

	if err := s.repo.CreateProposal(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	s.log.Info("proposal created",
		zap.String("proposal_id", p.ID),
		zap.String("token", p.Token),
		zap.Int("memories", len(p.Memories)))
	return p, nil
}

func (s *Service) allocateToken(ctx context.Context) (string, error) {
	for i := 0; i < tokenAttempts; i++ {
		token, err := s.tokens.NewToken()
		if err != nil {
			return "", err
		}
		exists, err := s.repo.TokenExists(ctx, token)
		if err != nil {
			return "", fmt.Errorf("check token: %w", err)
		}
		if !exists {
			return token, nil
		}
		s.log.Debug("token collision", zap.String("token", token))
	}
	return "", ErrTokenExhausted
}

// SetCollected persists the collected flag. Only the false to true edge
// exists; asking for false is refused.
func (s *Service) SetCollected(ctx context.Context, memoryID string, collected bool) error {
	if !collected {
		return ErrUncollect
	}
	return s.repo.MarkMemoryCollected(ctx, memoryID)
}

func (s *Service) List(ctx context.Context, creatorID string) ([]Summary, error) {
	list, err := s.repo.ListProposals(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	if list == nil {
		list = []Summary{}
	}
	return list, nil
}

// Owned loads a proposal and checks it belongs to creatorID.
func (s *Service) Owned(ctx context.Context, creatorID, proposalID string) (*Proposal, error) {
	p, err := s.repo.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != creatorID {
		return nil, ErrForbidden
	}
	return p, nil
}

// Delete removes the proposal and its memories and returns what was removed
// so stored media can be cleaned up.
func (s *Service) Delete(ctx context.Context, creatorID, proposalID string) (*Proposal, error) {
	p, err := s.Owned(ctx, creatorID, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteProposal(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("delete proposal: %w", err)
	}
	s.log.Info("proposal deleted", zap.String("proposal_id", p.ID))
	return p, nil
}

func (s *Service) ownedMemory(ctx context.Context, creatorID, memoryID string) (*Memory, error) {
	m, err := s.repo.GetMemory(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Owned(ctx, creatorID, m.ProposalID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMemory(ctx context.Context, creatorID, memoryID string) (*Memory, error) {
	m, err := s.ownedMemory(ctx, creatorID, memoryID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteMemory(ctx, m.ID); err != nil {
		return nil, fmt.Errorf("delete memory: %w", err)
	}
	return m, nil
}

func (s *Service) UpdateCaption(ctx context.Context, creatorID, memoryID string, u CaptionUpdate) (*Memory, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	m, err := s.ownedMemory(ctx, creatorID, memoryID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCaption(ctx, m.ID, u.Caption); err != nil {
		return nil, fmt.Errorf("update caption: %w", err)
	}
	m.CaptionText = u.Caption
	return m, nil
}
