package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/conorfennell/kapp/internal/http/handlers"
	httpMW "github.com/conorfennell/kapp/internal/http/middleware"
	"github.com/conorfennell/kapp/internal/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string

	ReviewHandler     *httpH.ReviewHandler
	CardHandler       *httpH.CardHandler
	VocabularyHandler *httpH.VocabularyHandler
	ExerciseHandler   *httpH.ExerciseHandler
	StatsHandler      *httpH.StatsHandler
	SourceHandler     *httpH.SourceHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestID())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.CORSOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Reviews
		if cfg.ReviewHandler != nil {
			api.POST("/reviews", cfg.ReviewHandler.SubmitCardReview)
			api.GET("/reviews/card/:id", cfg.ReviewHandler.CardHistory)
			api.POST("/vocabulary/:id/review", cfg.ReviewHandler.SubmitVocabularyReview)
			api.POST("/exercises/:id/review", cfg.ReviewHandler.SubmitExerciseReview)
		}

		// Cards
		if cfg.CardHandler != nil {
			api.GET("/cards/due", cfg.CardHandler.Due)
			api.GET("/cards", cfg.CardHandler.List)
			api.GET("/cards/:id", cfg.CardHandler.Get)
			api.GET("/decks", cfg.CardHandler.Decks)
		}

		// Vocabulary
		if cfg.VocabularyHandler != nil {
			api.GET("/vocabulary", cfg.VocabularyHandler.List)
			api.GET("/vocabulary/categories", cfg.VocabularyHandler.Categories)
			api.GET("/vocabulary/due", cfg.VocabularyHandler.Due)
			api.GET("/vocabulary/:id", cfg.VocabularyHandler.Get)
			api.POST("/vocabulary/:id/practice", cfg.VocabularyHandler.Practice)
		}

		// Exercises
		if cfg.ExerciseHandler != nil {
			api.GET("/exercises/due", cfg.ExerciseHandler.Due)
		}

		// Stats
		if cfg.StatsHandler != nil {
			api.GET("/stats", cfg.StatsHandler.Stats)
			api.GET("/srs/preview", cfg.StatsHandler.Preview)
		}

		// Sources
		if cfg.SourceHandler != nil {
			api.GET("/sources", cfg.SourceHandler.List)
			api.POST("/sources", cfg.SourceHandler.Add)
			api.DELETE("/sources/:id", cfg.SourceHandler.Delete)
			api.POST("/sync", cfg.SourceHandler.Sync)
		}
	}

	return r
}
