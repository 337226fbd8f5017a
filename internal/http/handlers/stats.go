package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/http/response"
	"github.com/conorfennell/kapp/internal/srs"
)

type StatsStore interface {
	Stats(ctx context.Context, now time.Time) (*domain.Stats, error)
}

type StatsHandler struct {
	store StatsStore
	now   func() time.Time
}

func NewStatsHandler(store StatsStore) *StatsHandler {
	return &StatsHandler{store: store, now: time.Now}
}

// GET /api/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), h.now().UTC())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/srs/preview
func (h *StatsHandler) Preview(c *gin.Context) {
	ef := srs.DefaultEaseFactor
	if raw := c.Query("ease_factor"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < srs.MinEaseFactor {
			response.BadRequest(c, fmt.Errorf("ease_factor must be a number >= %.1f", srs.MinEaseFactor))
			return
		}
		ef = v
	}
	response.RespondOK(c, gin.H{
		"ease_factor": ef,
		"reviews":     srs.PreviewReviews,
		"qualities":   srs.Preview(ef),
	})
}
