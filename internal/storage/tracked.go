package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/srs"
)

// LoadTracked reads the schedule of one item inside the transaction. An
// exercise that has never been reviewed gets a fresh, unsaved shadow row.
func (tx *Tx) LoadTracked(ctx context.Context, kind domain.ItemKind, id int64) (*domain.Tracked, error) {
	switch kind {
	case domain.KindFlashcard:
		var c domain.Flashcard
		err := tx.tx.GetContext(ctx, &c, tx.rebind(`SELECT `+cardColumns+` FROM cards WHERE id = ?`), id)
		if err != nil {
			return nil, notFound(err, "card", id)
		}
		return &domain.Tracked{Kind: kind, ID: c.ID, Schedule: c.State()}, nil

	case domain.KindVocabulary:
		var v domain.VocabularyItem
		err := tx.tx.GetContext(ctx, &v, tx.rebind(`SELECT `+vocabularyColumns+` FROM vocabulary_items WHERE id = ?`), id)
		if err != nil {
			return nil, notFound(err, "vocabulary item", id)
		}
		return &domain.Tracked{
			Kind:           kind,
			ID:             v.ID,
			Schedule:       v.State(),
			TimesPracticed: v.TimesPracticed,
			TimesCorrect:   v.TimesCorrect,
		}, nil

	case domain.KindExercise:
		var exists int64
		err := tx.tx.GetContext(ctx, &exists, tx.rebind(`SELECT id FROM exercises WHERE id = ?`), id)
		if err != nil {
			return nil, notFound(err, "exercise", id)
		}
		// Scanning allocates the pointer fields even when no row matches.
		row := domain.NewExerciseSRS(id)
		var got domain.ExerciseSRS
		err = tx.tx.GetContext(ctx, &got, tx.rebind(`SELECT `+exerciseSRSColumns+` FROM exercise_srs WHERE exercise_id = ?`), id)
		switch {
		case err == nil:
			row = got
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("failed to load schedule for exercise %d: %w", id, err)
		}
		return &domain.Tracked{
			Kind: kind,
			ID:   id,
			Schedule: srs.State{
				Repetitions:    row.Repetitions,
				Interval:       row.ReviewInterval,
				EaseFactor:     row.EaseFactor,
				NextReviewDate: row.NextReviewDate,
			},
			TimesPracticed: row.TimesPracticed,
			TimesCorrect:   row.TimesCorrect,
			LastReviewedAt: row.LastReviewedAt,
		}, nil
	}
	return nil, fmt.Errorf("unknown item kind %d", kind)
}

// SaveTracked writes an item's schedule (and counters, where the kind has them).
func (tx *Tx) SaveTracked(ctx context.Context, t *domain.Tracked) error {
	s := t.Schedule
	var (
		res sql.Result
		err error
	)
	switch t.Kind {
	case domain.KindFlashcard:
		res, err = tx.tx.ExecContext(ctx, tx.rebind(`
			UPDATE cards
			SET repetitions = ?, review_interval = ?, ease_factor = ?, next_review_date = ?
			WHERE id = ?
		`), s.Repetitions, s.Interval, s.EaseFactor, s.NextReviewDate, t.ID)

	case domain.KindVocabulary:
		res, err = tx.tx.ExecContext(ctx, tx.rebind(`
			UPDATE vocabulary_items
			SET repetitions = ?, review_interval = ?, ease_factor = ?, next_review_date = ?,
				times_practiced = ?, times_correct = ?
			WHERE id = ?
		`), s.Repetitions, s.Interval, s.EaseFactor, s.NextReviewDate, t.TimesPracticed, t.TimesCorrect, t.ID)

	case domain.KindExercise:
		res, err = tx.tx.ExecContext(ctx, tx.rebind(`
			INSERT INTO exercise_srs (exercise_id, times_practiced, times_correct, review_interval,
				ease_factor, repetitions, next_review_date, last_reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (exercise_id) DO UPDATE SET
				times_practiced = excluded.times_practiced,
				times_correct = excluded.times_correct,
				review_interval = excluded.review_interval,
				ease_factor = excluded.ease_factor,
				repetitions = excluded.repetitions,
				next_review_date = excluded.next_review_date,
				last_reviewed_at = excluded.last_reviewed_at
		`), t.ID, t.TimesPracticed, t.TimesCorrect, s.Interval, s.EaseFactor, s.Repetitions, s.NextReviewDate, t.LastReviewedAt)

	default:
		return fmt.Errorf("unknown item kind %d", t.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to save %s %d schedule: %w", t.Kind, t.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %d: %w", t.Kind, t.ID, ErrNotFound)
	}
	return nil
}

// AppendReviewEvent inserts an immutable review-history row.
func (tx *Tx) AppendReviewEvent(ctx context.Context, ev *domain.ReviewEvent) error {
	err := tx.tx.QueryRowxContext(ctx, tx.rebind(`
		INSERT INTO reviews (card_id, review_date, quality_rating, time_spent, was_successful)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), ev.CardID, ev.ReviewDate.UTC(), ev.QualityRating, ev.TimeSpent, ev.WasSuccessful).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("failed to insert review for card %d: %w", ev.CardID, err)
	}
	return nil
}
