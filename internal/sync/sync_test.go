package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/logger"
	"github.com/conorfennell/kapp/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeDeck(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunSyncReconcilesLocalSource(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	dir := t.TempDir()
	writeDeck(t, dir, "greetings.md", "K: 안녕\nE: hi\n---\nK: 감사합니다\nE: thank you\n")
	writeDeck(t, dir, "notes.txt", "K: ignored\n")

	s := New(db, nil, t.TempDir())
	src, err := s.AddSource(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, src.Type)

	reports, err := s.RunSync(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Parsed)
	assert.Equal(t, 2, reports[0].Inserted)
	assert.Equal(t, 0, reports[0].Deleted)

	decks, err := db.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "greetings", decks[0].Name)
	assert.Equal(t, 2, decks[0].CardCount)

	// Review a card, then drop the other one from the deck.
	cards, err := db.GetCardsBySourceID(ctx, src.ID)
	require.NoError(t, err)
	var kept domain.Flashcard
	for _, c := range cards {
		if c.FrontKorean == "안녕" {
			kept = c
		}
	}
	next := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.InReviewTx(ctx, func(tx domain.ReviewTx) error {
		return tx.SaveTracked(ctx, &domain.Tracked{
			Kind: domain.KindFlashcard, ID: kept.ID,
			Schedule: domain.Flashcard{Repetitions: 3, Interval: 15, EaseFactor: 2.7, NextReviewDate: &next}.State(),
		})
	}))
	writeDeck(t, dir, "greetings.md", "K: 안녕\nE: hi\n")

	reports, err = s.RunSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, reports[0].Inserted)
	assert.Equal(t, 1, reports[0].Deleted)

	got, err := db.GetCard(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Repetitions, "existing cards keep their schedule")

	sources, err := db.GetAllSources(ctx)
	require.NoError(t, err)
	require.NotNil(t, sources[0].LastScanned)
}

func TestAddSourceRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New(openDB(t), nil, t.TempDir())

	src, err := s.AddSource(ctx, "https://github.com/someone/decks.git")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceGit, src.Type)

	_, err = s.AddSource(ctx, "https://github.com/someone/decks.git")
	assert.ErrorIs(t, err, ErrSourceExists)

	_, err = s.AddSource(ctx, "  ")
	assert.Error(t, err)
}

func TestRunSyncGitSource(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	reposDir := t.TempDir()
	s := New(db, nil, reposDir)

	var fetched string
	s.git = func(_ context.Context, _ *logger.Logger, repoURL, localPath string) error {
		fetched = repoURL
		require.NoError(t, os.MkdirAll(localPath, 0o755))
		writeDeck(t, localPath, "numbers.md", "K: 하나\nE: one\n")
		return nil
	}

	_, err := s.AddSource(ctx, "https://github.com/someone/decks.git")
	require.NoError(t, err)
	_, err = s.AddSource(ctx, "git@github.com:someone/broken.git")
	require.NoError(t, err)

	calls := 0
	inner := s.git
	s.git = func(ctx context.Context, log *logger.Logger, repoURL, localPath string) error {
		calls++
		if repoURL == "git@github.com:someone/broken.git" {
			return errors.New("auth failed")
		}
		return inner(ctx, log, repoURL, localPath)
	}

	reports, err := s.RunSync(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "https://github.com/someone/decks.git", fetched)
	assert.Equal(t, 1, reports[0].Inserted)
	assert.Equal(t, "auth failed", reports[1].Failed)
	assert.DirExists(t, filepath.Join(reposDir, "github.com", "someone", "decks"))
}

func TestRunSyncWithoutSources(t *testing.T) {
	s := New(openDB(t), nil, t.TempDir())
	reports, err := s.RunSync(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}
