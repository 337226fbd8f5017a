package knol

import (
	"testing"

	"github.com/conorfennell/kapp/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Card{
		Korean:       "  안녕하세요 \r\n",
		English:      "Hello",
		Romanization: "Annyeonghaseyo",
		Notes:        "ignored",
		Level:        3,
	}
	expected := "안녕하세요\nhello\nannyeonghaseyo"
	normalized := Normalize(card)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		card := domain.Card{
			Korean:       "Q",
			English:      "A",
			Romanization: "C",
		}
		// Hash for "q\na\nc"
		expectedHash := "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2"
		hash := Hash(card)

		if hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("hash is deterministic", func(t *testing.T) {
		card1 := domain.Card{Korean: "물"}
		card2 := domain.Card{Korean: "물"}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes for identical cards to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		card1 := domain.Card{Korean: " 물 ", English: "  water"}
		card2 := domain.Card{Korean: "물", English: "Water"}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("notes and level do not change identity", func(t *testing.T) {
		card1 := domain.Card{Korean: "불", English: "fire", Notes: "a", Level: 1}
		card2 := domain.Card{Korean: "불", English: "fire", Notes: "b", Level: 4}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected notes and level to be excluded from the hash")
		}
	})

	t.Run("field boundaries are part of the identity", func(t *testing.T) {
		card1 := domain.Card{Korean: "사과", English: "apple", Romanization: "sagwa"}
		card2 := domain.Card{Korean: "사과a", English: "pple", Romanization: "sagwa"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected content shifted between fields to hash differently")
		}
	})

	t.Run("windows line endings inside a field", func(t *testing.T) {
		card1 := domain.Card{Korean: "물", English: "water\r\ndrink"}
		card2 := domain.Card{Korean: "물", English: "water\ndrink"}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected CRLF and LF to hash the same")
		}
	})

	t.Run("different cards have different hashes", func(t *testing.T) {
		card1 := domain.Card{Korean: "하나"}
		card2 := domain.Card{Korean: "둘"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected hashes for different cards to be different")
		}
	})
}
