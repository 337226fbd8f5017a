// Package sync reconciles the flashcards stored for each source with the
// markdown decks currently found at that source.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/gitsource"
	"github.com/conorfennell/kapp/internal/knol"
	"github.com/conorfennell/kapp/internal/logger"
	"github.com/conorfennell/kapp/internal/parser"
)

// ErrSourceExists is returned when adding a source that is already registered.
var ErrSourceExists = errors.New("source already exists")

// Store is the persistence the syncer needs.
type Store interface {
	InsertSource(ctx context.Context, path string, typ domain.SourceType) (int64, error)
	FindSourceByPath(ctx context.Context, path string) (*domain.Source, error)
	GetAllSources(ctx context.Context) ([]domain.Source, error)
	UpdateSourceLastScanned(ctx context.Context, sourceID int64, at time.Time) error
	UpsertDeck(ctx context.Context, name string, sourceID *int64) (int64, error)
	FindCardByHash(ctx context.Context, hash string) (*domain.Flashcard, error)
	InsertCard(ctx context.Context, deckID int64, card domain.Card) (int64, error)
	GetCardsBySourceID(ctx context.Context, sourceID int64) ([]domain.Flashcard, error)
	DeleteCardByHash(ctx context.Context, hash string) error
}

// GitSyncer fetches a remote repository into a local directory.
type GitSyncer func(ctx context.Context, log *logger.Logger, repoURL, localPath string) error

// Report summarises one source's reconciliation.
type Report struct {
	SourceID int64  `json:"source_id"`
	Path     string `json:"path"`
	Parsed   int    `json:"parsed_cards"`
	Inserted int    `json:"inserted_cards"`
	Deleted  int    `json:"orphaned_deleted"`
	Errors   int    `json:"errors"`
	Failed   string `json:"failed,omitempty"`
}

// Syncer imports decks from all registered sources. Only one sync runs at a time.
type Syncer struct {
	db       Store
	log      *logger.Logger
	reposDir string
	git      GitSyncer
	now      func() time.Time
	mu       gosync.Mutex
}

func New(db Store, log *logger.Logger, reposDir string) *Syncer {
	if log == nil {
		log = logger.Nop()
	}
	return &Syncer{
		db:       db,
		log:      log,
		reposDir: reposDir,
		git:      gitsource.Sync,
		now:      time.Now,
	}
}

// AddSource registers a local directory or git repository URL.
func (s *Syncer) AddSource(ctx context.Context, path string) (*domain.Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("source path cannot be empty")
	}
	typ := domain.SourceLocal
	if gitsource.IsGitURL(path) {
		typ = domain.SourceGit
	} else if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	existing, err := s.db.FindSourceByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, fmt.Errorf("%s: %w", path, ErrSourceExists)
	}

	id, err := s.db.InsertSource(ctx, path, typ)
	if err != nil {
		return nil, err
	}
	s.log.Info("Added source", "id", id, "type", typ, "path", path)
	return &domain.Source{ID: id, Path: path, Type: typ}, nil
}

// RunSync iterates over all sources and reconciles them. A failing source is
// reported and skipped.
func (s *Syncer) RunSync(ctx context.Context) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("Starting sync process for all sources")
	sources, err := s.db.GetAllSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}

	reports := make([]Report, 0, len(sources))
	if len(sources) == 0 {
		s.log.Info("No sources configured. Add one with --add-source <path/or/url.git>")
		return reports, nil
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		s.log.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		dir := source.Path
		if source.Type == domain.SourceGit {
			dir, err = s.fetch(ctx, source.Path)
			if err != nil {
				s.log.Error("Error syncing git repo", "url", source.Path, "error", err)
				reports = append(reports, Report{SourceID: source.ID, Path: source.Path, Failed: err.Error()})
				continue
			}
		}

		rep, err := s.reconcile(ctx, source.ID, dir)
		rep.Path = source.Path
		if err != nil {
			s.log.Error("Error reconciling source", "id", source.ID, "error", err)
			rep.Failed = err.Error()
		}
		reports = append(reports, rep)
	}
	s.log.Info("Sync process complete", "sources", len(sources))
	return reports, nil
}

func (s *Syncer) fetch(ctx context.Context, repoURL string) (string, error) {
	if err := os.MkdirAll(s.reposDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create repos directory: %w", err)
	}
	localPath, err := gitsource.LocalPath(s.reposDir, repoURL)
	if err != nil {
		return "", err
	}
	if err := s.git(ctx, s.log, repoURL, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

// reconcile inserts unseen cards found under dir, keeps known ones with their
// schedule, and deletes the source's cards that no longer appear in any deck.
func (s *Syncer) reconcile(ctx context.Context, sourceID int64, dir string) (Report, error) {
	rep := Report{SourceID: sourceID}
	var parseErrors []error
	foundCardHashes := make(map[string]bool)
	deckIDs := make(map[string]int64)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		fileCards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		if len(fileCards) == 0 {
			return nil
		}

		name := parser.DeckName(path)
		deckID, ok := deckIDs[name]
		if !ok {
			id, err := s.db.UpsertDeck(ctx, name, &sourceID)
			if err != nil {
				parseErrors = append(parseErrors, fmt.Errorf("deck %s: %w", name, err))
				return nil
			}
			deckID = id
			deckIDs[name] = id
		}

		for _, card := range fileCards {
			card.Hash = knol.Hash(card)
			rep.Parsed++
			if foundCardHashes[card.Hash] {
				continue
			}
			foundCardHashes[card.Hash] = true

			existingCard, findErr := s.db.FindCardByHash(ctx, card.Hash)
			if findErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("db check for %s: %w", card.Hash, findErr))
				continue
			}
			if existingCard == nil {
				s.log.Debug("New card found, inserting", "hash", card.Hash, "deck", name)
				if _, insertErr := s.db.InsertCard(ctx, deckID, card); insertErr != nil {
					parseErrors = append(parseErrors, fmt.Errorf("db insert for %s: %w", card.Hash, insertErr))
					continue
				}
				rep.Inserted++
			}
		}
		return nil
	})
	if walkErr != nil {
		return rep, fmt.Errorf("error walking directory %s: %w", dir, walkErr)
	}

	dbCards, err := s.db.GetCardsBySourceID(ctx, sourceID)
	if err != nil {
		return rep, fmt.Errorf("error getting cards for source %d: %w", sourceID, err)
	}

	for _, dbCard := range dbCards {
		if _, found := foundCardHashes[dbCard.Hash]; !found {
			s.log.Debug("Orphaned card, deleting", "hash", dbCard.Hash)
			if err := s.db.DeleteCardByHash(ctx, dbCard.Hash); err != nil {
				s.log.Warn("Failed to delete orphaned card", "hash", dbCard.Hash, "error", err)
				parseErrors = append(parseErrors, err)
				continue
			}
			rep.Deleted++
		}
	}

	if err := s.db.UpdateSourceLastScanned(ctx, sourceID, s.now()); err != nil {
		s.log.Warn("Failed to update last scanned for source", "source_id", sourceID, "error", err)
	}

	rep.Errors = len(parseErrors)
	for _, e := range parseErrors {
		s.log.Warn("Sync error", "source_id", sourceID, "error", e)
	}
	s.log.Info("Reconciliation complete",
		"path", dir,
		"parsed_cards", rep.Parsed,
		"inserted_cards", rep.Inserted,
		"orphaned_deleted", rep.Deleted,
		"errors", rep.Errors,
	)
	return rep, nil
}
