package domain

import (
	"time"

	"github.com/conorfennell/kapp/internal/srs"
)

// Exercise is a lesson exercise. Its schedule lives in a separate
// ExerciseSRS shadow row that exists only once it has been reviewed.
type Exercise struct {
	ID            int64  `json:"id" db:"id"`
	LessonTitle   string `json:"lesson_title" db:"lesson_title"`
	ExerciseType  string `json:"exercise_type" db:"exercise_type"`
	Question      string `json:"question" db:"question"`
	KoreanText    string `json:"korean_text,omitempty" db:"korean_text"`
	EnglishText   string `json:"english_text,omitempty" db:"english_text"`
	CorrectAnswer string `json:"correct_answer" db:"correct_answer"`
	Explanation   string `json:"explanation,omitempty" db:"explanation"`
	DisplayOrder  int    `json:"display_order" db:"display_order"`
	ExerciseLevel int    `json:"level" db:"level"`
}

// ExerciseSRS is the per-exercise scheduling shadow record.
type ExerciseSRS struct {
	ExerciseID     int64      `json:"exercise_id" db:"exercise_id"`
	TimesPracticed int        `json:"times_practiced" db:"times_practiced"`
	TimesCorrect   int        `json:"times_correct" db:"times_correct"`
	ReviewInterval int        `json:"review_interval" db:"review_interval"`
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	NextReviewDate *time.Time `json:"next_review_date" db:"next_review_date"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
}

// NewExerciseSRS returns the shadow row created on an exercise's first review.
func NewExerciseSRS(exerciseID int64) ExerciseSRS {
	return ExerciseSRS{
		ExerciseID:     exerciseID,
		ReviewInterval: 1,
		EaseFactor:     srs.DefaultEaseFactor,
	}
}

// TrackedExercise joins an exercise with its shadow row, if any.
type TrackedExercise struct {
	Exercise
	SRS *ExerciseSRS `json:"srs"`
}

func (e TrackedExercise) DueAt() *time.Time {
	if e.SRS == nil {
		return nil
	}
	return e.SRS.NextReviewDate
}
func (e TrackedExercise) Level() int    { return e.ExerciseLevel }
func (e TrackedExercise) ItemID() int64 { return e.ID }
