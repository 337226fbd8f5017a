package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/kapp/internal/domain"
)

type fakeSource struct {
	cards    []domain.Flashcard
	vocab    []domain.VocabularyItem
	asOf     time.Time
	vocabHit bool
}

func (f *fakeSource) DueCards(_ context.Context, asOf time.Time, _ domain.CardFilter) ([]domain.Flashcard, error) {
	f.asOf = asOf
	return f.cards, nil
}

func (f *fakeSource) DueVocabulary(_ context.Context, asOf time.Time) ([]domain.VocabularyItem, error) {
	f.asOf = asOf
	f.vocabHit = true
	return f.vocab, nil
}

func (f *fakeSource) DueExercises(context.Context, time.Time) ([]domain.TrackedExercise, error) {
	return nil, nil
}

func at(t time.Time) *time.Time { return &t }

func TestQueueCardsUsesCalendarDay(t *testing.T) {
	src := &fakeSource{cards: []domain.Flashcard{
		{ID: 1, NextReviewDate: at(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))},
		{ID: 2},
		{ID: 3, NextReviewDate: at(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC))},
	}}
	q := NewQueue(src, QueueConfig{VocabularyEnabled: true, ExercisesEnabled: true})
	q.now = fixedClock()

	sel, err := q.Cards(context.Background(), "", domain.CardFilter{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), src.asOf)
	require.Len(t, sel.Items, 2)
	assert.Equal(t, int64(2), sel.Items[0].ID)
	assert.Equal(t, int64(1), sel.Items[1].ID)
	assert.Equal(t, 1, sel.NewCount)
}

func TestQueueLimit(t *testing.T) {
	q := NewQueue(&fakeSource{}, QueueConfig{})
	assert.Equal(t, 20, q.Limit(""))
	assert.Equal(t, 20, q.Limit("abc"))
	assert.Equal(t, 5, q.Limit("5"))
	assert.Equal(t, 50, q.Limit("500"))
}

func TestQueueDisabledVocabulary(t *testing.T) {
	src := &fakeSource{vocab: []domain.VocabularyItem{{ID: 1}}}
	q := NewQueue(src, QueueConfig{VocabularyEnabled: false})

	sel, err := q.Vocabulary(context.Background(), "10")
	require.NoError(t, err)
	assert.Empty(t, sel.Items)
	assert.NotNil(t, sel.Items)
	assert.Equal(t, 0, sel.NewCount)
	assert.False(t, src.vocabHit)
}

func TestQueueVocabularyUsesInstant(t *testing.T) {
	src := &fakeSource{vocab: []domain.VocabularyItem{
		{ID: 1, NextReviewDate: at(t0.Add(time.Minute))},
		{ID: 2, NextReviewDate: at(t0.Add(-time.Minute))},
	}}
	q := NewQueue(src, QueueConfig{VocabularyEnabled: true})
	q.now = fixedClock()

	sel, err := q.Vocabulary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, t0, src.asOf)
	require.Len(t, sel.Items, 1)
	assert.Equal(t, int64(2), sel.Items[0].ID)
}
