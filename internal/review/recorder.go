// Package review records learner reviews and builds due queues on top of the
// pure scheduling in package srs.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/logger"
	"github.com/conorfennell/kapp/internal/srs"
	"github.com/conorfennell/kapp/internal/storage"
)

// TxRunner opens the transaction a review is recorded in.
type TxRunner interface {
	InReviewTx(ctx context.Context, fn func(domain.ReviewTx) error) error
}

// Submission is one review as submitted by the learner.
type Submission struct {
	Quality   int      `validate:"min=0,max=5"`
	TimeSpent *float64 `validate:"omitempty,min=0"`
}

// Result is the schedule an item ends up with after a review.
type Result struct {
	Kind  domain.ItemKind
	ID    int64
	State srs.State
}

type policy struct {
	granularity srs.Granularity
	counters    bool
	history     bool
}

var policies = map[domain.ItemKind]policy{
	domain.KindFlashcard:  {granularity: srs.DateGranularity, history: true},
	domain.KindVocabulary: {granularity: srs.TimestampGranularity, counters: true},
	domain.KindExercise:   {granularity: srs.TimestampGranularity, counters: true},
}

// Recorder applies a review to one item and persists the outcome atomically.
type Recorder struct {
	store    TxRunner
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time
	disabled map[domain.ItemKind]bool
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock overrides the recorder's time source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithDisabled rejects reviews of the given kinds with ErrDisabled.
func WithDisabled(kinds ...domain.ItemKind) RecorderOption {
	return func(r *Recorder) {
		for _, k := range kinds {
			r.disabled[k] = true
		}
	}
}

func NewRecorder(store TxRunner, log *logger.Logger, opts ...RecorderOption) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	r := &Recorder{
		store:    store,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
		disabled: map[domain.ItemKind]bool{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record applies sub to the item and commits the new schedule, the updated
// counters and, for flashcards, a review event as one unit. Calling it twice
// applies two reviews.
func (r *Recorder) Record(ctx context.Context, kind domain.ItemKind, id int64, sub Submission) (*Result, error) {
	p, ok := policies[kind]
	if !ok {
		return nil, fmt.Errorf("unknown item kind %d", kind)
	}
	if r.disabled[kind] {
		return nil, fmt.Errorf("%s: %w", kind, ErrDisabled)
	}

	now := r.now().UTC()
	var res *Result
	err := r.store.InReviewTx(ctx, func(tx domain.ReviewTx) error {
		item, err := tx.LoadTracked(ctx, kind, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
			}
			return err
		}

		if err := r.validate.Struct(sub); err != nil {
			return fmt.Errorf("%w: %s", ErrValidation, describe(err))
		}
		q := srs.Quality(sub.Quality)

		next, err := srs.Apply(q, item.Schedule, now, p.granularity)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		item.Schedule = next
		if p.counters {
			item.TimesPracticed++
			if q.Passed() {
				item.TimesCorrect++
			}
			item.LastReviewedAt = &now
		}
		if err := tx.SaveTracked(ctx, item); err != nil {
			return err
		}

		if p.history {
			ev := &domain.ReviewEvent{
				CardID:        id,
				ReviewDate:    now,
				QualityRating: sub.Quality,
				TimeSpent:     sub.TimeSpent,
				WasSuccessful: q.Passed(),
			}
			if err := tx.AppendReviewEvent(ctx, ev); err != nil {
				return err
			}
		}

		res = &Result{Kind: kind, ID: id, State: next}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		r.log.Error("Failed to record review", "kind", kind.String(), "id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.log.Debug("Recorded review",
		"kind", kind.String(),
		"id", id,
		"quality", sub.Quality,
		"repetitions", res.State.Repetitions,
		"interval", res.State.Interval,
		"ease_factor", res.State.EaseFactor,
	)
	return res, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Quality":
			msgs = append(msgs, fmt.Sprintf("quality must be between 0 and 5, got %v", fe.Value()))
		case "TimeSpent":
			msgs = append(msgs, "time_spent must not be negative")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
