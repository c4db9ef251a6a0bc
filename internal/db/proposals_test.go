package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/proposal"
)

func openTest(t *testing.T) *Repo {
	t.Helper()
	r, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func sample(id, creator, token string, memories int) *proposal.Proposal {
	p := &proposal.Proposal{
		ID:             id,
		CreatorID:      creator,
		PartnerName:    "Ana",
		Token:          token,
		NebulaColor:    proposal.DefaultNebulaColor,
		StarColor:      proposal.DefaultStarColor,
		MusicURL:       "https://cdn.example.com/song.mp3",
		MusicStartTime: 12.5,
		ProposalText:   "Will you marry me, Ana?",
		GalleryImages:  []string{"https://cdn.example.com/g1.jpg", "https://cdn.example.com/g2.jpg"},
	}
	for i := 0; i < memories; i++ {
		p.Memories = append(p.Memories, proposal.Memory{
			ID:          fmt.Sprintf("%s-m%d", id, i),
			ProposalID:  id,
			CaptionText: fmt.Sprintf("memory %d", i),
			OrderIndex:  i,
		})
	}
	return p
}

func TestCreateAndResolve(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)
	require.NoError(t, r.CreateProposal(ctx, sample("p1", "creator-1", "HEART-1234", 5)))

	p, err := r.GetProposalByToken(ctx, "HEART-1234")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Ana", p.PartnerName)
	assert.Equal(t, 12.5, p.MusicStartTime)
	assert.WithinDuration(t, time.Now(), p.CreatedAt, time.Minute)
	require.Len(t, p.Memories, 5)
	for i, m := range p.Memories {
		assert.Equal(t, i, m.OrderIndex)
		assert.False(t, m.Collected)
	}
	assert.Equal(t, []string{"https://cdn.example.com/g1.jpg", "https://cdn.example.com/g2.jpg"}, p.GalleryImages)

	_, err = r.GetProposalByToken(ctx, "HEART-9999")
	assert.ErrorIs(t, err, proposal.ErrNotFound)

	exists, err := r.TokenExists(ctx, "HEART-1234")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = r.TokenExists(ctx, "HEART-4321")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDuplicateTokenRejected(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)
	require.NoError(t, r.CreateProposal(ctx, sample("p1", "c", "HEART-1234", 5)))
	assert.Error(t, r.CreateProposal(ctx, sample("p2", "c", "HEART-1234", 5)))

	// The failed insert left nothing behind.
	_, err := r.GetMemory(ctx, "p2-m0")
	assert.ErrorIs(t, err, proposal.ErrMemoryNotFound)
}

func TestMarkCollected(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)
	require.NoError(t, r.CreateProposal(ctx, sample("p1", "c", "HEART-1234", 5)))

	require.NoError(t, r.MarkMemoryCollected(ctx, "p1-m2"))
	require.NoError(t, r.MarkMemoryCollected(ctx, "p1-m2"))
	m, err := r.GetMemory(ctx, "p1-m2")
	require.NoError(t, err)
	assert.True(t, m.Collected)

	assert.ErrorIs(t, r.MarkMemoryCollected(ctx, "nope"), proposal.ErrMemoryNotFound)
}

func TestListProposals(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)
	older := sample("p1", "c1", "HEART-1111", 5)
	older.CreatedAt = time.Now().Add(-48 * time.Hour).UTC()
	require.NoError(t, r.CreateProposal(ctx, older))
	require.NoError(t, r.CreateProposal(ctx, sample("p2", "c1", "HEART-2222", 6)))
	require.NoError(t, r.CreateProposal(ctx, sample("p3", "c2", "HEART-3333", 5)))

	list, err := r.ListProposals(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID)
	assert.Equal(t, 6, list[0].MemoryCount)
	assert.Equal(t, "p1", list[1].ID)

	list, err = r.ListProposals(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteMemoryCompactsOrder(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)
	require.NoError(t, r.CreateProposal(ctx, sample("p1", "c", "HEART-1234", 5)))

	require.NoError(t, r.DeleteMemory(ctx, "p1-m1"))
	p, err := r.GetProposal(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, p.Memories, 4)
	want := []string{"p1-m0", "p1-m2", "p1-m3", "p1-m4"}
	for i, m := range p.Memories {
		assert.Equal(t, want[i], m.ID)
		assert.Equal(t, i, m.OrderIndex)
	}

	assert.ErrorIs(t, r.DeleteMemory(ctx, "p1-m1"), proposal.ErrMemoryNotFound)
}

func TestUpdateCaption(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)
	require.NoError(t, r.CreateProposal(ctx, sample("p1", "c", "HEART-1234", 5)))

	require.NoError(t, r.UpdateCaption(ctx, "p1-m0", "our first trip"))
	m, err := r.GetMemory(ctx, "p1-m0")
	require.NoError(t, err)
	assert.Equal(t, "our first trip", m.CaptionText)
	assert.ErrorIs(t, r.UpdateCaption(ctx, "nope", "x"), proposal.ErrMemoryNotFound)
}

func TestDeleteProposalCascades(t *testing.T) {
	ctx := context.Background()
	r := openTest(t)
	require.NoError(t, r.CreateProposal(ctx, sample("p1", "c", "HEART-1234", 5)))

	require.NoError(t, r.DeleteProposal(ctx, "p1"))
	_, err := r.GetProposal(ctx, "p1")
	assert.ErrorIs(t, err, proposal.ErrNotFound)
	_, err = r.GetMemory(ctx, "p1-m0")
	assert.ErrorIs(t, err, proposal.ErrMemoryNotFound)
	urls, err := r.gallery(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, urls)

	assert.ErrorIs(t, r.DeleteProposal(ctx, "p1"), proposal.ErrNotFound)
}

func TestServiceOverSQLite(t *testing.T) {
	ctx := context.Background()
	svc := proposal.NewService(openTest(t), nil, zap.NewNop())

	d := proposal.Draft{PartnerName: "  Ana ", NebulaColor: "#112233"}
	for i := 0; i < proposal.MinMemories; i++ {
		d.Memories = append(d.Memories, proposal.MemoryDraft{Caption: fmt.Sprintf("moment %d", i)})
	}
	created, err := svc.Create(ctx, "creator-1", d)
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, " "+created.Token+" ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.PartnerName)
	assert.Equal(t, proposal.DefaultStarColor, got.StarColor)
	require.Len(t, got.Memories, proposal.MinMemories)

	require.NoError(t, svc.SetCollected(ctx, got.Memories[0].ID, true))
	assert.ErrorIs(t, svc.SetCollected(ctx, got.Memories[0].ID, false), proposal.ErrUncollect)

	_, err = svc.Delete(ctx, "someone-else", created.ID)
	assert.ErrorIs(t, err, proposal.ErrForbidden)
	_, err = svc.Delete(ctx, "creator-1", created.ID)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, created.Token)
	assert.ErrorIs(t, err, proposal.ErrNotFound)
}
