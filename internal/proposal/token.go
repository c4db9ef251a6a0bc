package proposal

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const TokenPrefix = "HEART-"

var tokenPattern = regexp.MustCompile(`^HEART-\d{4}$`)

// TokenSource produces candidate share tokens.
type TokenSource interface {
	NewToken() (string, error)
}

type randomTokens struct{}

// RandomTokens draws tokens in HEART-1000..HEART-9999 from crypto/rand.
func RandomTokens() TokenSource { return randomTokens{} }

func (randomTokens) NewToken() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return fmt.Sprintf("%s%d", TokenPrefix, 1000+n.Int64()), nil
}

// NormalizeToken trims whitespace and uppercases what the partner typed.
func NormalizeToken(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}
