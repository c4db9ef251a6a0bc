package proposal

import (
	"errors"
	"sort"
	"time"
)

const (
	DefaultNebulaColor  = "#5a006c"
	DefaultStarColor    = "#e0e0e0"
	DefaultProposalText = "Will you marry me?"

	// MinMemories is the smallest number of memories a proposal may carry.
	MinMemories = 5
)

var (
	ErrNotFound       = errors.New("proposal not found")
	ErrMemoryNotFound = errors.New("memory not found")
	ErrForbidden      = errors.New("not the creator of this proposal")
	ErrInvalidToken   = errors.New("invalid token format")
	ErrTokenExhausted = errors.New("could not allocate a unique token")
	ErrUncollect      = errors.New("collected memories cannot be reset")
)

type Proposal struct {
	ID             string    `json:"id"`
	CreatorID      string    `json:"creator_id"`
	PartnerName    string    `json:"partner_name"`
	Token          string    `json:"token"`
	NebulaColor    string    `json:"nebula_color"`
	StarColor      string    `json:"star_color"`
	MusicURL       string    `json:"music_url,omitempty"`
	MusicStartTime float64   `json:"music_start_time"`
	VideoURL       string    `json:"video_url,omitempty"`
	ProposalText   string    `json:"proposal_text"`
	CreatedAt      time.Time `json:"created_at"`
	Memories       []Memory  `json:"memories"`
	GalleryImages  []string  `json:"gallery_images"`
}

type Memory struct {
	ID          string    `json:"id"`
	ProposalID  string    `json:"proposal_id"`
	ImageURL    string    `json:"image_url,omitempty"`
	CaptionText string    `json:"caption_text"`
	OrderIndex  int       `json:"order_index"`
	Collected   bool      `json:"collected"`
	CreatedAt   time.Time `json:"created_at"`
}

type GalleryImage struct {
	ProposalID string `json:"proposal_id"`
	ImageURL   string `json:"image_url"`
}

// Summary is a proposal as listed to its creator.
type Summary struct {
	Proposal
	MemoryCount int `json:"memory_count"`
}

// SortMemories orders memories by their order index.
func (p *Proposal) SortMemories() {
	sort.SliceStable(p.Memories, func(i, j int) bool {
		return p.Memories[i].OrderIndex < p.Memories[j].OrderIndex
	})
}

func (p *Proposal) Memory(id string) (Memory, bool) {
	for _, m := range p.Memories {
		if m.ID == id {
			return m, true
		}
	}
	return Memory{}, false
}

// QuestionText returns the custom question or the default one.
func (p *Proposal) QuestionText() string {
	if p.ProposalText == "" {
		return DefaultProposalText
	}
	return p.ProposalText
}

// ApplyDefaults fills the theme colours and question text when absent.
func (p *Proposal) ApplyDefaults() {
	if p.NebulaColor == "" {
		p.NebulaColor = DefaultNebulaColor
	}
	if p.StarColor == "" {
		p.StarColor = DefaultStarColor
	}
	if p.ProposalText == "" {
		p.ProposalText = DefaultProposalText
	}
	if p.GalleryImages == nil {
		p.GalleryImages = []string{}
	}
	if p.Memories == nil {
		p.Memories = []Memory{}
	}
}
