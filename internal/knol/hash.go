package knol

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/conorfennell/kapp/internal/domain"
)

// identity lists the fields that make two cards the same card.
// Level and notes can change without creating a new card.
func identity(card domain.Card) []string {
	return []string{card.Korean, card.English, card.Romanization}
}

func clean(field string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(field)), "\r\n", "\n")
}

// Normalize returns the canonical text a card is hashed from: each identity
// field lowercased, trimmed and with LF line endings, one per line.
func Normalize(card domain.Card) string {
	fields := identity(card)
	for i, f := range fields {
		fields[i] = clean(f)
	}
	return strings.Join(fields, "\n")
}

// Hash is the hex SHA-256 of the card's normalized text. Sync uses it to
// skip cards it has already stored.
func Hash(card domain.Card) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return hex.EncodeToString(sum[:])
}
