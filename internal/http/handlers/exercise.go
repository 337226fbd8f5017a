package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/http/response"
	"github.com/conorfennell/kapp/internal/srs"
)

type ExerciseQueue interface {
	Exercises(ctx context.Context, rawLimit string) (srs.Selection[domain.TrackedExercise], error)
}

type ExerciseHandler struct {
	queue ExerciseQueue
}

func NewExerciseHandler(queue ExerciseQueue) *ExerciseHandler {
	return &ExerciseHandler{queue: queue}
}

// GET /api/exercises/due
func (h *ExerciseHandler) Due(c *gin.Context) {
	sel, err := h.queue.Exercises(c.Request.Context(), c.Query("limit"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"items":     sel.Items,
		"total_due": len(sel.Items),
		"new_items": sel.NewCount,
	})
}
