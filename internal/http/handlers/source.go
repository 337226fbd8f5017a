package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/http/response"
	ksync "github.com/conorfennell/kapp/internal/sync"
)

type SourceStore interface {
	GetAllSources(ctx context.Context) ([]domain.Source, error)
	DeleteSource(ctx context.Context, id int64) error
}

type SourceSyncer interface {
	AddSource(ctx context.Context, path string) (*domain.Source, error)
	RunSync(ctx context.Context) ([]ksync.Report, error)
}

type SourceHandler struct {
	store  SourceStore
	syncer SourceSyncer
}

func NewSourceHandler(store SourceStore, syncer SourceSyncer) *SourceHandler {
	return &SourceHandler{store: store, syncer: syncer}
}

// GET /api/sources
func (h *SourceHandler) List(c *gin.Context) {
	sources, err := h.store.GetAllSources(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if sources == nil {
		sources = []domain.Source{}
	}
	response.RespondOK(c, gin.H{"sources": sources})
}

type addSourceRequest struct {
	Path string `json:"path" binding:"required"`
}

// POST /api/sources
func (h *SourceHandler) Add(c *gin.Context) {
	var req addSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		response.BadRequest(c, errors.New("path cannot be empty"))
		return
	}
	src, err := h.syncer.AddSource(c.Request.Context(), req.Path)
	if err != nil {
		if errors.Is(err, ksync.ErrSourceExists) {
			response.RespondError(c, http.StatusConflict, "source_exists", err)
			return
		}
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"source": src})
}

// DELETE /api/sources/:id
func (h *SourceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteSource(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/sync
func (h *SourceHandler) Sync(c *gin.Context) {
	reports, err := h.syncer.RunSync(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if reports == nil {
		reports = []ksync.Report{}
	}
	response.RespondOK(c, gin.H{"reports": reports})
}
