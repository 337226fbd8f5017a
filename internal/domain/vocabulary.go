package domain

import (
	"time"

	"github.com/conorfennell/kapp/internal/srs"
)

// VocabularyItem is a standalone glossary entry with its own schedule and
// practice counters.
type VocabularyItem struct {
	ID                     int64      `json:"id" db:"id"`
	Korean                 string     `json:"korean" db:"korean"`
	Romanization           string     `json:"romanization" db:"romanization"`
	English                string     `json:"english" db:"english"`
	PartOfSpeech           string     `json:"part_of_speech" db:"part_of_speech"`
	ExampleSentenceKorean  string     `json:"example_sentence_korean" db:"example_sentence_korean"`
	ExampleSentenceEnglish string     `json:"example_sentence_english" db:"example_sentence_english"`
	Category               string     `json:"category" db:"category"`
	DifficultyLevel        int        `json:"difficulty_level" db:"difficulty_level"`
	TimesPracticed         int        `json:"times_practiced" db:"times_practiced"`
	TimesCorrect           int        `json:"times_correct" db:"times_correct"`
	Repetitions            int        `json:"repetitions" db:"repetitions"`
	ReviewInterval         int        `json:"review_interval" db:"review_interval"`
	EaseFactor             float64    `json:"ease_factor" db:"ease_factor"`
	NextReviewDate         *time.Time `json:"next_review_date" db:"next_review_date"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
}

func (v VocabularyItem) DueAt() *time.Time { return v.NextReviewDate }
func (v VocabularyItem) Level() int        { return v.DifficultyLevel }
func (v VocabularyItem) ItemID() int64     { return v.ID }

// AccuracyRate is the percentage of correct practices, nil if never practiced.
func (v VocabularyItem) AccuracyRate() *float64 {
	return accuracy(v.TimesCorrect, v.TimesPracticed)
}

// State returns the item's scheduling fields.
func (v VocabularyItem) State() srs.State {
	return srs.State{
		Repetitions:    v.Repetitions,
		Interval:       v.ReviewInterval,
		EaseFactor:     v.EaseFactor,
		NextReviewDate: v.NextReviewDate,
	}
}

// VocabularyFilter narrows vocabulary listings.
type VocabularyFilter struct {
	Category   string
	Difficulty int
	Search     string
	Limit      int
	Offset     int
}

// CategoryCount is one row of the category listing.
type CategoryCount struct {
	Name  string `json:"name" db:"name"`
	Count int    `json:"count" db:"count"`
}

func accuracy(correct, practiced int) *float64 {
	if practiced == 0 {
		return nil
	}
	rate := float64(correct) / float64(practiced) * 100
	return &rate
}
