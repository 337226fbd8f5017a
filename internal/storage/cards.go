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

const cardColumns = `id, deck_id, hash, front_korean, front_romanization, back_english, notes, level,
	repetitions, review_interval, ease_factor, next_review_date, created_at`

// UpsertDeck returns the id of the deck with the given name, creating it if needed.
func (db *DB) UpsertDeck(ctx context.Context, name string, sourceID *int64) (int64, error) {
	var id int64
	err := db.conn.GetContext(ctx, &id, db.rebind(`SELECT id FROM decks WHERE name = ?`), name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to find deck %s: %w", name, err)
	}

	err = db.conn.QueryRowxContext(ctx, db.rebind(`
		INSERT INTO decks (name, source_id) VALUES (?, ?) RETURNING id
	`), name, sourceID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert deck %s: %w", name, err)
	}
	return id, nil
}

// ListDecks returns every deck with its card count.
func (db *DB) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	decks := []domain.Deck{}
	err := db.conn.SelectContext(ctx, &decks, `
		SELECT d.id, d.name, d.description, d.source_id, COUNT(c.id) AS card_count
		FROM decks d LEFT JOIN cards c ON c.deck_id = d.id
		GROUP BY d.id, d.name, d.description, d.source_id
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// InsertCard inserts a new, never reviewed card into a deck.
func (db *DB) InsertCard(ctx context.Context, deckID int64, card domain.Card) (int64, error) {
	level := card.Level
	if level <= 0 {
		level = 1
	}
	var id int64
	err := db.conn.QueryRowxContext(ctx, db.rebind(`
		INSERT INTO cards (deck_id, hash, front_korean, front_romanization, back_english, notes, level,
			repetitions, review_interval, ease_factor, next_review_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, NULL, ?)
		RETURNING id
	`),
		deckID,
		card.Hash,
		card.Korean,
		card.Romanization,
		card.English,
		card.Notes,
		level,
		srs.DefaultEaseFactor,
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card %s: %w", card.Hash, err)
	}
	return id, nil
}

// GetCard retrieves a card by id.
func (db *DB) GetCard(ctx context.Context, id int64) (*domain.Flashcard, error) {
	var c domain.Flashcard
	err := db.conn.GetContext(ctx, &c, db.rebind(`SELECT `+cardColumns+` FROM cards WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err, "card", id)
	}
	return &c, nil
}

// FindCardByHash retrieves a card by its content hash. It returns nil, nil
// when no such card exists.
func (db *DB) FindCardByHash(ctx context.Context, hash string) (*domain.Flashcard, error) {
	var c domain.Flashcard
	err := db.conn.GetContext(ctx, &c, db.rebind(`SELECT `+cardColumns+` FROM cards WHERE hash = ?`), hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card by hash %s: %w", hash, err)
	}
	return &c, nil
}

// ListCards pages through all cards ordered by id.
func (db *DB) ListCards(ctx context.Context, limit, offset int) ([]domain.Flashcard, int, error) {
	var total int
	if err := db.conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM cards`); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards: %w", err)
	}
	cards := []domain.Flashcard{}
	err := db.conn.SelectContext(ctx, &cards, db.rebind(`
		SELECT `+cardColumns+` FROM cards ORDER BY id LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, total, nil
}

// DueCards returns every card due at asOf that matches filter, unordered.
func (db *DB) DueCards(ctx context.Context, asOf time.Time, filter domain.CardFilter) ([]domain.Flashcard, error) {
	where := []string{"(next_review_date IS NULL OR next_review_date <= ?)"}
	args := []any{asOf.UTC()}
	if filter.Level > 0 {
		where = append(where, "level = ?")
		args = append(args, filter.Level)
	}
	if filter.DeckID > 0 {
		where = append(where, "deck_id = ?")
		args = append(args, filter.DeckID)
	}

	cards := []domain.Flashcard{}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE ` + strings.Join(where, " AND ")
	if err := db.conn.SelectContext(ctx, &cards, db.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	return cards, nil
}

// GetCardsBySourceID retrieves all cards imported from a source.
func (db *DB) GetCardsBySourceID(ctx context.Context, sourceID int64) ([]domain.Flashcard, error) {
	cards := []domain.Flashcard{}
	err := db.conn.SelectContext(ctx, &cards, db.rebind(`
		SELECT c.id, c.deck_id, c.hash, c.front_korean, c.front_romanization, c.back_english, c.notes, c.level,
			c.repetitions, c.review_interval, c.ease_factor, c.next_review_date, c.created_at
		FROM cards c JOIN decks d ON d.id = c.deck_id
		WHERE d.source_id = ?
	`), sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for source ID %d: %w", sourceID, err)
	}
	return cards, nil
}

// DeleteCardByHash removes a card, and through cascade its review history.
func (db *DB) DeleteCardByHash(ctx context.Context, hash string) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM cards WHERE hash = ?`), hash)
	if err != nil {
		return fmt.Errorf("failed to delete card with hash %s: %w", hash, err)
	}
	return nil
}

// ReviewsForCard returns a card's review history, newest first.
func (db *DB) ReviewsForCard(ctx context.Context, cardID int64) ([]domain.ReviewEvent, error) {
	if _, err := db.GetCard(ctx, cardID); err != nil {
		return nil, err
	}
	events := []domain.ReviewEvent{}
	err := db.conn.SelectContext(ctx, &events, db.rebind(`
		SELECT id, card_id, review_date, quality_rating, time_spent, was_successful
		FROM reviews WHERE card_id = ?
		ORDER BY review_date DESC, id DESC
	`), cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews for card %d: %w", cardID, err)
	}
	return events, nil
}
