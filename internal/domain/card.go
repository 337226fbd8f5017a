package domain

import (
	"time"

	"github.com/conorfennell/kapp/internal/srs"
)

// Deck is a named collection of flashcards, usually one markdown file.
type Deck struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	SourceID    *int64 `json:"source_id,omitempty" db:"source_id"`
	CardCount   int    `json:"card_count" db:"card_count"`
}

// Card is a single Korean/English flashcard as read from a deck file.
type Card struct {
	Korean       string
	English      string
	Romanization string
	Notes        string
	Level        int
	Hash         string
}

// Flashcard is a stored card with its scheduling state. Its next review is
// tracked at date granularity.
type Flashcard struct {
	ID                int64      `json:"id" db:"id"`
	DeckID            int64      `json:"deck_id" db:"deck_id"`
	Hash              string     `json:"-" db:"hash"`
	FrontKorean       string     `json:"front_korean" db:"front_korean"`
	FrontRomanization string     `json:"front_romanization" db:"front_romanization"`
	BackEnglish       string     `json:"back_english" db:"back_english"`
	Notes             string     `json:"notes,omitempty" db:"notes"`
	CardLevel         int        `json:"level" db:"level"`
	Repetitions       int        `json:"repetitions" db:"repetitions"`
	Interval          int        `json:"interval" db:"review_interval"`
	EaseFactor        float64    `json:"ease_factor" db:"ease_factor"`
	NextReviewDate    *time.Time `json:"next_review_date" db:"next_review_date"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

func (c Flashcard) DueAt() *time.Time { return c.NextReviewDate }
func (c Flashcard) Level() int        { return c.CardLevel }
func (c Flashcard) ItemID() int64     { return c.ID }

// State returns the card's scheduling fields.
func (c Flashcard) State() srs.State {
	return srs.State{
		Repetitions:    c.Repetitions,
		Interval:       c.Interval,
		EaseFactor:     c.EaseFactor,
		NextReviewDate: c.NextReviewDate,
	}
}

// CardFilter narrows due-card selection. Zero values mean "any".
type CardFilter struct {
	Level  int
	DeckID int64
}

// ReviewEvent records a single review of a flashcard. Rows are append-only.
type ReviewEvent struct {
	ID            int64     `json:"id" db:"id"`
	CardID        int64     `json:"card_id" db:"card_id"`
	ReviewDate    time.Time `json:"review_date" db:"review_date"`
	QualityRating int       `json:"quality_rating" db:"quality_rating"`
	TimeSpent     *float64  `json:"time_spent" db:"time_spent"`
	WasSuccessful bool      `json:"was_successful" db:"was_successful"`
}
