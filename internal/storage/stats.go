package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/srs"
)

// Stats summarises flashcard activity as of now.
func (db *DB) Stats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	today := srs.Today(now)
	var st domain.Stats

	if err := db.conn.GetContext(ctx, &st.TotalCards, `SELECT COUNT(*) FROM cards`); err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}
	err := db.conn.GetContext(ctx, &st.CardsDueToday, db.rebind(`
		SELECT COUNT(*) FROM cards WHERE next_review_date IS NULL OR next_review_date <= ?
	`), today)
	if err != nil {
		return nil, fmt.Errorf("failed to count due cards: %w", err)
	}

	var totals struct {
		Reviews    int `db:"reviews"`
		Successful int `db:"successful"`
	}
	err = db.conn.GetContext(ctx, &totals, `
		SELECT COUNT(*) AS reviews,
			COALESCE(SUM(CASE WHEN was_successful THEN 1 ELSE 0 END), 0) AS successful
		FROM reviews
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	if totals.Reviews > 0 {
		st.AccuracyRate = float64(totals.Successful) / float64(totals.Reviews) * 100
	}

	err = db.conn.GetContext(ctx, &st.CardsReviewedToday, db.rebind(`
		SELECT COUNT(*) FROM reviews WHERE review_date >= ?
	`), today)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's reviews: %w", err)
	}

	days, err := db.reviewDays(ctx)
	if err != nil {
		return nil, err
	}
	st.StreakDays = streakDays(days, now)
	return &st, nil
}

// reviewDays lists the distinct UTC days that have at least one review.
func (db *DB) reviewDays(ctx context.Context) ([]time.Time, error) {
	// modernc writes UTC times as "2006-01-02 15:04:05 +0000 UTC".
	day := `substr(review_date, 1, 10)`
	if db.driver == DriverPostgres {
		day = `to_char(review_date AT TIME ZONE 'UTC', 'YYYY-MM-DD')`
	}
	var raw []string
	if err := db.conn.SelectContext(ctx, &raw, `SELECT DISTINCT `+day+` FROM reviews`); err != nil {
		return nil, fmt.Errorf("failed to load review days: %w", err)
	}
	days := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(time.DateOnly, r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse review day %q: %w", r, err)
		}
		days = append(days, d)
	}
	return days, nil
}

// streakDays counts consecutive UTC days with at least one review, ending
// today, or yesterday when nothing has been reviewed yet today.
func streakDays(reviews []time.Time, now time.Time) int {
	seen := make(map[time.Time]bool, len(reviews))
	for _, r := range reviews {
		seen[srs.Today(r)] = true
	}
	day := srs.Today(now)
	if !seen[day] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for seen[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
