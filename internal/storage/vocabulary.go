package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/srs"
)

const vocabularyColumns = `id, korean, romanization, english, part_of_speech, example_sentence_korean,
	example_sentence_english, category, difficulty_level, times_practiced, times_correct,
	repetitions, review_interval, ease_factor, next_review_date, created_at`

// UpsertVocabulary inserts an item, or refreshes the content of the existing
// item with the same korean/english pair. Scheduling fields and counters of
// an existing item are left untouched. It reports whether a row was created.
func (db *DB) UpsertVocabulary(ctx context.Context, v *domain.VocabularyItem) (bool, error) {
	if v.DifficultyLevel <= 0 {
		v.DifficultyLevel = 1
	}

	var existing int64
	err := db.conn.GetContext(ctx, &existing, db.rebind(`
		SELECT id FROM vocabulary_items WHERE korean = ? AND english = ?
	`), v.Korean, v.English)
	if err == nil {
		_, err = db.conn.ExecContext(ctx, db.rebind(`
			UPDATE vocabulary_items
			SET romanization = ?, part_of_speech = ?, example_sentence_korean = ?,
				example_sentence_english = ?, category = ?, difficulty_level = ?
			WHERE id = ?
		`), v.Romanization, v.PartOfSpeech, v.ExampleSentenceKorean, v.ExampleSentenceEnglish,
			v.Category, v.DifficultyLevel, existing)
		if err != nil {
			return false, fmt.Errorf("failed to update vocabulary item %d: %w", existing, err)
		}
		v.ID = existing
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to find vocabulary item %s: %w", v.Korean, err)
	}

	v.CreatedAt = time.Now().UTC()
	v.EaseFactor = srs.DefaultEaseFactor
	err = db.conn.QueryRowxContext(ctx, db.rebind(`
		INSERT INTO vocabulary_items (korean, romanization, english, part_of_speech, example_sentence_korean,
			example_sentence_english, category, difficulty_level, ease_factor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), v.Korean, v.Romanization, v.English, v.PartOfSpeech, v.ExampleSentenceKorean,
		v.ExampleSentenceEnglish, v.Category, v.DifficultyLevel, v.EaseFactor, v.CreatedAt).Scan(&v.ID)
	if err != nil {
		return false, fmt.Errorf("failed to insert vocabulary item %s: %w", v.Korean, err)
	}
	return true, nil
}

// GetVocabulary retrieves a vocabulary item by id.
func (db *DB) GetVocabulary(ctx context.Context, id int64) (*domain.VocabularyItem, error) {
	var v domain.VocabularyItem
	err := db.conn.GetContext(ctx, &v, db.rebind(`SELECT `+vocabularyColumns+` FROM vocabulary_items WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err, "vocabulary item", id)
	}
	return &v, nil
}

// ListVocabulary returns one page of items matching f and the total match count.
func (db *DB) ListVocabulary(ctx context.Context, f domain.VocabularyFilter) ([]domain.VocabularyItem, int, error) {
	var where []string
	var args []any
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Difficulty > 0 {
		where = append(where, "difficulty_level = ?")
		args = append(args, f.Difficulty)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		where = append(where, "(LOWER(korean) LIKE ? OR LOWER(english) LIKE ? OR LOWER(romanization) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.GetContext(ctx, &total, db.rebind(`SELECT COUNT(*) FROM vocabulary_items`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count vocabulary: %w", err)
	}

	items := []domain.VocabularyItem{}
	query := `SELECT ` + vocabularyColumns + ` FROM vocabulary_items` + clause +
		` ORDER BY difficulty_level, category, korean LIMIT ? OFFSET ?`
	if err := db.conn.SelectContext(ctx, &items, db.rebind(query), append(args, f.Limit, f.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("failed to list vocabulary: %w", err)
	}
	return items, total, nil
}

// VocabularyCategories lists non-empty categories with their item counts.
func (db *DB) VocabularyCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	cats := []domain.CategoryCount{}
	err := db.conn.SelectContext(ctx, &cats, `
		SELECT category AS name, COUNT(id) AS count
		FROM vocabulary_items
		WHERE category <> ''
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

// RecordPractice bumps an item's practice counters without touching its schedule.
func (db *DB) RecordPractice(ctx context.Context, id int64, correct bool) (*domain.VocabularyItem, error) {
	inc := 0
	if correct {
		inc = 1
	}
	var item *domain.VocabularyItem
	err := db.InTx(ctx, func(tx *Tx) error {
		res, err := tx.tx.ExecContext(ctx, tx.rebind(`
			UPDATE vocabulary_items
			SET times_practiced = times_practiced + 1, times_correct = times_correct + ?
			WHERE id = ?
		`), inc, id)
		if err != nil {
			return fmt.Errorf("failed to record practice for vocabulary item %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("vocabulary item %d: %w", id, ErrNotFound)
		}
		var v domain.VocabularyItem
		if err := tx.tx.GetContext(ctx, &v, tx.rebind(`SELECT `+vocabularyColumns+` FROM vocabulary_items WHERE id = ?`), id); err != nil {
			return notFound(err, "vocabulary item", id)
		}
		item = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DueVocabulary returns every vocabulary item due at asOf, unordered.
func (db *DB) DueVocabulary(ctx context.Context, asOf time.Time) ([]domain.VocabularyItem, error) {
	items := []domain.VocabularyItem{}
	err := db.conn.SelectContext(ctx, &items, db.rebind(`
		SELECT `+vocabularyColumns+` FROM vocabulary_items
		WHERE next_review_date IS NULL OR next_review_date <= ?
	`), asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get due vocabulary: %w", err)
	}
	return items, nil
}
