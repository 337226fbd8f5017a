package review

import (
	"context"
	"time"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/srs"
)

// DueSource loads unordered pools of due candidates.
type DueSource interface {
	DueCards(ctx context.Context, asOf time.Time, filter domain.CardFilter) ([]domain.Flashcard, error)
	DueVocabulary(ctx context.Context, asOf time.Time) ([]domain.VocabularyItem, error)
	DueExercises(ctx context.Context, asOf time.Time) ([]domain.TrackedExercise, error)
}

// QueueConfig bounds queue sizes and switches item kinds on or off.
type QueueConfig struct {
	DefaultLimit      int
	MaxLimit          int
	VocabularyEnabled bool
	ExercisesEnabled  bool
}

// Queue selects what the learner should review next.
type Queue struct {
	src DueSource
	cfg QueueConfig
	now func() time.Time
}

func NewQueue(src DueSource, cfg QueueConfig) *Queue {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	return &Queue{src: src, cfg: cfg, now: time.Now}
}

// Limit resolves a raw limit query value against the queue's bounds.
func (q *Queue) Limit(raw string) int {
	return srs.ParseLimit(raw, q.cfg.DefaultLimit, q.cfg.MaxLimit)
}

// Cards returns due flashcards. Flashcards are scheduled by calendar day, so
// everything due by the end of today qualifies.
func (q *Queue) Cards(ctx context.Context, rawLimit string, filter domain.CardFilter) (srs.Selection[domain.Flashcard], error) {
	asOf := srs.Today(q.now())
	pool, err := q.src.DueCards(ctx, asOf, filter)
	if err != nil {
		return srs.Selection[domain.Flashcard]{}, err
	}
	return srs.SelectDue(pool, asOf, q.Limit(rawLimit)), nil
}

// Vocabulary returns due vocabulary items, or nothing when vocabulary review is off.
func (q *Queue) Vocabulary(ctx context.Context, rawLimit string) (srs.Selection[domain.VocabularyItem], error) {
	empty := srs.Selection[domain.VocabularyItem]{Items: []domain.VocabularyItem{}}
	if !q.cfg.VocabularyEnabled {
		return empty, nil
	}
	asOf := q.now().UTC()
	pool, err := q.src.DueVocabulary(ctx, asOf)
	if err != nil {
		return empty, err
	}
	return srs.SelectDue(pool, asOf, q.Limit(rawLimit)), nil
}

// Exercises returns due exercises, or nothing when exercise review is off.
func (q *Queue) Exercises(ctx context.Context, rawLimit string) (srs.Selection[domain.TrackedExercise], error) {
	empty := srs.Selection[domain.TrackedExercise]{Items: []domain.TrackedExercise{}}
	if !q.cfg.ExercisesEnabled {
		return empty, nil
	}
	asOf := q.now().UTC()
	pool, err := q.src.DueExercises(ctx, asOf)
	if err != nil {
		return empty, err
	}
	return srs.SelectDue(pool, asOf, q.Limit(rawLimit)), nil
}
