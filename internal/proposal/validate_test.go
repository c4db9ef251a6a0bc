package proposal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveMemories() []MemoryDraft {
	return []MemoryDraft{
		{Caption: "first date"},
		{Caption: "the beach", ImageURL: "/media/p/a.jpg"},
		{Caption: "paris"},
		{Caption: "our cat"},
		{Caption: "snow day"},
	}
}

func TestDraftValidate(t *testing.T) {
	t.Run("valid draft", func(t *testing.T) {
		d := Draft{PartnerName: "  Sam ", NebulaColor: "#5a006c", Memories: fiveMemories()}
		require.NoError(t, d.Validate())
		assert.Equal(t, "Sam", d.PartnerName)
	})

	t.Run("too few memories", func(t *testing.T) {
		d := Draft{PartnerName: "Sam", Memories: fiveMemories()[:4]}
		err := d.Validate()
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "memories")
	})

	t.Run("blank caption", func(t *testing.T) {
		mems := fiveMemories()
		mems[3].Caption = "   "
		d := Draft{PartnerName: "Sam", Memories: mems}
		var ve *ValidationError
		require.True(t, errors.As(d.Validate(), &ve))
		assert.Contains(t, ve.Fields, "memories[3].caption")
	})

	t.Run("bad colour", func(t *testing.T) {
		d := Draft{PartnerName: "Sam", StarColor: "pink", Memories: fiveMemories()}
		var ve *ValidationError
		require.True(t, errors.As(d.Validate(), &ve))
		assert.Contains(t, ve.Fields, "star_color")
	})

	t.Run("missing partner", func(t *testing.T) {
		d := Draft{Memories: fiveMemories()}
		var ve *ValidationError
		require.True(t, errors.As(d.Validate(), &ve))
		assert.Contains(t, ve.Fields, "partner_name")
	})
}

func TestNormalizeTextComposes(t *testing.T) {
	assert.Equal(t, "Caf\u00e9", NormalizeText(" Cafe\u0301 "))
}
