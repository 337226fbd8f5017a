package domain

import "time"

// SourceType distinguishes local deck directories from git repositories.
type SourceType string

const (
	SourceLocal SourceType = "local"
	SourceGit   SourceType = "git"
)

// Source is a place decks are imported from.
type Source struct {
	ID          int64      `json:"id" db:"id"`
	Path        string     `json:"path" db:"path"`
	Type        SourceType `json:"type" db:"type"`
	LastScanned *time.Time `json:"last_scanned" db:"last_scanned"`
}

// Stats summarises flashcard review activity.
type Stats struct {
	TotalCards         int     `json:"total_cards"`
	CardsDueToday      int     `json:"cards_due_today"`
	CardsReviewedToday int     `json:"cards_reviewed_today"`
	AccuracyRate       float64 `json:"accuracy_rate"`
	StreakDays         int     `json:"streak_days"`
}
