package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/http/response"
	"github.com/conorfennell/kapp/internal/srs"
)

type CardStore interface {
	GetCard(ctx context.Context, id int64) (*domain.Flashcard, error)
	ListCards(ctx context.Context, limit, offset int) ([]domain.Flashcard, int, error)
	ListDecks(ctx context.Context) ([]domain.Deck, error)
}

type CardQueue interface {
	Cards(ctx context.Context, rawLimit string, filter domain.CardFilter) (srs.Selection[domain.Flashcard], error)
	Limit(raw string) int
}

type CardHandler struct {
	cards CardStore
	queue CardQueue
}

func NewCardHandler(cards CardStore, queue CardQueue) *CardHandler {
	return &CardHandler{cards: cards, queue: queue}
}

// GET /api/cards/due
func (h *CardHandler) Due(c *gin.Context) {
	level, ok := queryInt(c, "level")
	if !ok {
		return
	}
	deckID, ok := queryInt(c, "deck_id")
	if !ok {
		return
	}

	sel, err := h.queue.Cards(c.Request.Context(), c.Query("limit"), domain.CardFilter{
		Level:  level,
		DeckID: int64(deckID),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"cards":     sel.Items,
		"total_due": len(sel.Items),
		"new_items": sel.NewCount,
	})
}

// GET /api/cards
func (h *CardHandler) List(c *gin.Context) {
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	limit := h.queue.Limit(c.Query("limit"))

	cards, total, err := h.cards.ListCards(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"cards":  cards,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GET /api/cards/:id
func (h *CardHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	card, err := h.cards.GetCard(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"card": card})
}

// GET /api/decks
func (h *CardHandler) Decks(c *gin.Context) {
	decks, err := h.cards.ListDecks(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"decks": decks})
}
