package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/conorfennell/kapp/internal/config"
	"github.com/conorfennell/kapp/internal/cron"
	"github.com/conorfennell/kapp/internal/domain"
	apphttp "github.com/conorfennell/kapp/internal/http"
	httpH "github.com/conorfennell/kapp/internal/http/handlers"
	"github.com/conorfennell/kapp/internal/importer"
	"github.com/conorfennell/kapp/internal/logger"
	"github.com/conorfennell/kapp/internal/review"
	"github.com/conorfennell/kapp/internal/storage"
	ksync "github.com/conorfennell/kapp/internal/sync"
)

func main() {
	// 1. Define and parse command-line flags
	flags := pflag.NewFlagSet("kapp", pflag.ExitOnError)
	config.RegisterFlags(flags)
	addSource := flags.String("add-source", "", "Add a new source (local directory or git repository URL) and exit")
	runSync := flags.Bool("sync", false, "Sync all sources and exit")
	importVocab := flags.String("import-vocab", "", "Import vocabulary from an .xlsx or .csv file and exit")
	sheet := flags.String("sheet", "", "Worksheet to import with --import-vocab (default: first sheet)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. Open the database
	if cfg.Database.Driver == storage.DriverSQLite {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatal("Failed to create data directory", "dir", dir, "error", err)
			}
		}
	}
	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open database", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()
	log.Info("Database opened", "driver", cfg.Database.Driver, "dsn", cfg.Database.DSN)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := ksync.New(db, log, cfg.Sync.ReposDir)

	// 3. One-shot actions
	switch {
	case *addSource != "":
		src, err := syncer.AddSource(ctx, *addSource)
		if err != nil {
			log.Fatal("Failed to add source", "path", *addSource, "error", err)
		}
		fmt.Printf("Added %s source %d: %s\n", src.Type, src.ID, src.Path)
		return
	case *runSync:
		reports, err := syncer.RunSync(ctx)
		if err != nil {
			log.Fatal("Sync failed", "error", err)
		}
		printReports(reports)
		return
	case *importVocab != "":
		res, err := importer.Import(ctx, db, importer.Options{FilePath: *importVocab, SheetName: *sheet})
		if err != nil {
			log.Fatal("Vocabulary import failed", "file", *importVocab, "error", err)
		}
		fmt.Printf("Processed %d rows: %d created, %d updated, %d skipped, %d errors.\n",
			res.TotalProcessed, res.Created, res.Updated, res.Skipped, len(res.Errors))
		for _, e := range res.Errors {
			fmt.Printf("- %s\n", e)
		}
		return
	}

	// 4. Serve
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	var disabled []domain.ItemKind
	if !cfg.SRS.VocabularyEnabled {
		disabled = append(disabled, domain.KindVocabulary)
	}
	if !cfg.SRS.SentenceEnabled {
		disabled = append(disabled, domain.KindExercise)
	}
	recorder := review.NewRecorder(db, log, review.WithDisabled(disabled...))
	queue := review.NewQueue(db, review.QueueConfig{
		DefaultLimit:      cfg.SRS.DueLimitDefault,
		MaxLimit:          cfg.SRS.DueLimitMax,
		VocabularyEnabled: cfg.SRS.VocabularyEnabled,
		ExercisesEnabled:  cfg.SRS.SentenceEnabled,
	})

	if cfg.Sync.Interval > 0 {
		sched := cron.New(log)
		if err := sched.ScheduleSync(cfg.Sync.Interval, syncer); err != nil {
			log.Fatal("Failed to schedule sync", "error", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:               log,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		ReviewHandler:     httpH.NewReviewHandler(recorder, db),
		CardHandler:       httpH.NewCardHandler(db, queue),
		VocabularyHandler: httpH.NewVocabularyHandler(db, queue),
		ExerciseHandler:   httpH.NewExerciseHandler(queue),
		StatsHandler:      httpH.NewStatsHandler(db),
		SourceHandler:     httpH.NewSourceHandler(db, syncer),
		HealthHandler:     httpH.NewHealthHandler(db),
	})
	if err := server.Run(ctx, cfg.HTTP.Addr); err != nil {
		log.Error("HTTP server stopped", "error", err)
		os.Exit(1)
	}
}

func printReports(reports []ksync.Report) {
	fmt.Printf("Synced %d sources.\n", len(reports))
	for _, r := range reports {
		if r.Failed != "" {
			fmt.Printf("- %s: failed: %s\n", r.Path, r.Failed)
			continue
		}
		fmt.Printf("- %s: %d parsed, %d inserted, %d deleted, %d errors\n",
			r.Path, r.Parsed, r.Inserted, r.Deleted, r.Errors)
	}
}
