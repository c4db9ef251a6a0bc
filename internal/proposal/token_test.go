package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTokensFormat(t *testing.T) {
	src := RandomTokens()
	for i := 0; i < 200; i++ {
		tok, err := src.NewToken()
		require.NoError(t, err)
		assert.True(t, ValidToken(tok), "token %q", tok)
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HEART-1234", "HEART-1234"},
		{"heart-1234", "HEART-1234"},
		{"  Heart-1234\n", "HEART-1234"},
		{"\tHEART-9999 ", "HEART-9999"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeToken(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, ValidToken(got))
		})
	}
}

func TestValidTokenRejects(t *testing.T) {
	for _, tok := range []string{"", "HEART-", "HEART-123", "HEART-12345", "LOVE-1234", "HEART_1234", "HEART-12a4"} {
		assert.False(t, ValidToken(tok), tok)
	}
}
