package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/http/response"
	"github.com/conorfennell/kapp/internal/srs"
)

const (
	vocabularyPageDefault = 50
	vocabularyPageMax     = 100
)

type VocabularyStore interface {
	GetVocabulary(ctx context.Context, id int64) (*domain.VocabularyItem, error)
	ListVocabulary(ctx context.Context, f domain.VocabularyFilter) ([]domain.VocabularyItem, int, error)
	VocabularyCategories(ctx context.Context) ([]domain.CategoryCount, error)
	RecordPractice(ctx context.Context, id int64, correct bool) (*domain.VocabularyItem, error)
}

type VocabularyQueue interface {
	Vocabulary(ctx context.Context, rawLimit string) (srs.Selection[domain.VocabularyItem], error)
}

type VocabularyHandler struct {
	store VocabularyStore
	queue VocabularyQueue
}

func NewVocabularyHandler(store VocabularyStore, queue VocabularyQueue) *VocabularyHandler {
	return &VocabularyHandler{store: store, queue: queue}
}

// vocabularyView adds the derived accuracy rate to an item.
type vocabularyView struct {
	domain.VocabularyItem
	AccuracyRate *float64 `json:"accuracy_rate"`
}

func viewOf(v domain.VocabularyItem) vocabularyView {
	return vocabularyView{VocabularyItem: v, AccuracyRate: v.AccuracyRate()}
}

// GET /api/vocabulary
func (h *VocabularyHandler) List(c *gin.Context) {
	difficulty, ok := queryInt(c, "difficulty")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	f := domain.VocabularyFilter{
		Category:   strings.TrimSpace(c.Query("category")),
		Difficulty: difficulty,
		Search:     strings.TrimSpace(c.Query("search")),
		Limit:      srs.ParseLimit(c.Query("limit"), vocabularyPageDefault, vocabularyPageMax),
		Offset:     offset,
	}

	items, total, err := h.store.ListVocabulary(c.Request.Context(), f)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	views := make([]vocabularyView, 0, len(items))
	for _, it := range items {
		views = append(views, viewOf(it))
	}
	response.RespondOK(c, gin.H{
		"vocabulary": views,
		"total":      total,
		"limit":      f.Limit,
		"offset":     f.Offset,
	})
}

// GET /api/vocabulary/categories
func (h *VocabularyHandler) Categories(c *gin.Context) {
	cats, err := h.store.VocabularyCategories(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if cats == nil {
		cats = []domain.CategoryCount{}
	}
	response.RespondOK(c, gin.H{"categories": cats})
}

// GET /api/vocabulary/:id
func (h *VocabularyHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.store.GetVocabulary(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"item": viewOf(*item)})
}

// GET /api/vocabulary/due
func (h *VocabularyHandler) Due(c *gin.Context) {
	sel, err := h.queue.Vocabulary(c.Request.Context(), c.Query("limit"))
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

type practiceRequest struct {
	Correct *bool `json:"correct" binding:"required"`
}

// POST /api/vocabulary/:id/practice
func (h *VocabularyHandler) Practice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req practiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	item, err := h.store.RecordPractice(c.Request.Context(), id, *req.Correct)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":         true,
		"times_practiced": item.TimesPracticed,
		"times_correct":   item.TimesCorrect,
		"accuracy_rate":   item.AccuracyRate(),
	})
}
