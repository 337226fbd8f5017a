package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/kapp/internal/domain"
)

const exerciseSRSColumns = `exercise_id, times_practiced, times_correct, review_interval,
	ease_factor, repetitions, next_review_date, last_reviewed_at`

const exerciseColumns = `id, lesson_title, exercise_type, question, korean_text, english_text,
	correct_answer, explanation, display_order, level`

// InsertExercise stores a new exercise and sets its id.
func (db *DB) InsertExercise(ctx context.Context, e *domain.Exercise) error {
	if e.ExerciseLevel <= 0 {
		e.ExerciseLevel = 1
	}
	err := db.conn.QueryRowxContext(ctx, db.rebind(`
		INSERT INTO exercises (lesson_title, exercise_type, question, korean_text, english_text,
			correct_answer, explanation, display_order, level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), e.LessonTitle, e.ExerciseType, e.Question, e.KoreanText, e.EnglishText,
		e.CorrectAnswer, e.Explanation, e.DisplayOrder, e.ExerciseLevel).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to insert exercise: %w", err)
	}
	return nil
}

// GetExercise retrieves an exercise and its schedule, if it has one.
func (db *DB) GetExercise(ctx context.Context, id int64) (*domain.TrackedExercise, error) {
	var e domain.Exercise
	err := db.conn.GetContext(ctx, &e, db.rebind(`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err, "exercise", id)
	}
	rows := []domain.ExerciseSRS{}
	err = db.conn.SelectContext(ctx, &rows, db.rebind(`SELECT `+exerciseSRSColumns+` FROM exercise_srs WHERE exercise_id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule for exercise %d: %w", id, err)
	}
	te := &domain.TrackedExercise{Exercise: e}
	if len(rows) > 0 {
		te.SRS = &rows[0]
	}
	return te, nil
}

// exerciseRow is the flat shape of the exercises/exercise_srs outer join.
type exerciseRow struct {
	domain.Exercise
	SRSExerciseID  *int64     `db:"srs_exercise_id"`
	TimesPracticed *int       `db:"times_practiced"`
	TimesCorrect   *int       `db:"times_correct"`
	ReviewInterval *int       `db:"review_interval"`
	EaseFactor     *float64   `db:"ease_factor"`
	Repetitions    *int       `db:"repetitions"`
	NextReviewDate *time.Time `db:"next_review_date"`
	LastReviewedAt *time.Time `db:"last_reviewed_at"`
}

func (r exerciseRow) tracked() domain.TrackedExercise {
	te := domain.TrackedExercise{Exercise: r.Exercise}
	if r.SRSExerciseID == nil {
		return te
	}
	te.SRS = &domain.ExerciseSRS{
		ExerciseID:     *r.SRSExerciseID,
		TimesPracticed: deref(r.TimesPracticed),
		TimesCorrect:   deref(r.TimesCorrect),
		ReviewInterval: deref(r.ReviewInterval),
		EaseFactor:     deref(r.EaseFactor),
		Repetitions:    deref(r.Repetitions),
		NextReviewDate: r.NextReviewDate,
		LastReviewedAt: r.LastReviewedAt,
	}
	return te
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// DueExercises returns every exercise due at asOf, unordered. Exercises that
// have never been reviewed have no shadow row and are always due.
func (db *DB) DueExercises(ctx context.Context, asOf time.Time) ([]domain.TrackedExercise, error) {
	rows := []exerciseRow{}
	err := db.conn.SelectContext(ctx, &rows, db.rebind(`
		SELECT e.id, e.lesson_title, e.exercise_type, e.question, e.korean_text, e.english_text,
			e.correct_answer, e.explanation, e.display_order, e.level,
			s.exercise_id AS srs_exercise_id, s.times_practiced, s.times_correct, s.review_interval,
			s.ease_factor, s.repetitions, s.next_review_date, s.last_reviewed_at
		FROM exercises e
		LEFT JOIN exercise_srs s ON s.exercise_id = e.id
		WHERE s.next_review_date IS NULL OR s.next_review_date <= ?
	`), asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get due exercises: %w", err)
	}
	out := make([]domain.TrackedExercise, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.tracked())
	}
	return out, nil
}
