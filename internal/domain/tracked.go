package domain

import (
	"context"
	"time"

	"github.com/conorfennell/kapp/internal/srs"
)

// ItemKind identifies which reviewable record a schedule belongs to.
type ItemKind int

const (
	KindFlashcard ItemKind = iota
	KindVocabulary
	KindExercise
)

func (k ItemKind) String() string {
	switch k {
	case KindFlashcard:
		return "flashcard"
	case KindVocabulary:
		return "vocabulary"
	case KindExercise:
		return "exercise"
	default:
		return "unknown"
	}
}

// Tracked is the kind-independent scheduling view of one reviewable item.
type Tracked struct {
	Kind           ItemKind
	ID             int64
	Schedule       srs.State
	TimesPracticed int
	TimesCorrect   int
	LastReviewedAt *time.Time
}

// ReviewTx is the transactional surface a review is recorded through. All
// calls made on one ReviewTx commit or roll back together.
type ReviewTx interface {
	// LoadTracked returns the item's current schedule, or an error wrapping
	// storage's not-found sentinel.
	LoadTracked(ctx context.Context, kind ItemKind, id int64) (*Tracked, error)
	SaveTracked(ctx context.Context, t *Tracked) error
	AppendReviewEvent(ctx context.Context, ev *ReviewEvent) error
}
