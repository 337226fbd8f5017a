package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/kapp/internal/domain"
	"github.com/conorfennell/kapp/internal/http/response"
	"github.com/conorfennell/kapp/internal/review"
)

// Recorder records one review of one item.
type Recorder interface {
	Record(ctx context.Context, kind domain.ItemKind, id int64, sub review.Submission) (*review.Result, error)
}

// ReviewHistory is the read side of flashcard reviews.
type ReviewHistory interface {
	// ReviewsForCard fails with storage.ErrNotFound when the card is absent.
	ReviewsForCard(ctx context.Context, cardID int64) ([]domain.ReviewEvent, error)
}

type ReviewHandler struct {
	recorder Recorder
	history  ReviewHistory
}

func NewReviewHandler(recorder Recorder, history ReviewHistory) *ReviewHandler {
	return &ReviewHandler{recorder: recorder, history: history}
}

type cardReviewRequest struct {
	ItemID        *int64   `json:"item_id"`
	CardID        *int64   `json:"card_id"`
	QualityRating *int     `json:"quality_rating" binding:"required"`
	TimeSpent     *float64 `json:"time_spent"`
}

func (r cardReviewRequest) id() (int64, error) {
	switch {
	case r.ItemID != nil:
		return *r.ItemID, nil
	case r.CardID != nil:
		return *r.CardID, nil
	default:
		return 0, errors.New("item_id is required")
	}
}

// POST /api/reviews
func (h *ReviewHandler) SubmitCardReview(c *gin.Context) {
	var req cardReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	id, err := req.id()
	if err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.recorder.Record(c.Request.Context(), domain.KindFlashcard, id, review.Submission{
		Quality:   *req.QualityRating,
		TimeSpent: req.TimeSpent,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}

	var next string
	if res.State.NextReviewDate != nil {
		next = res.State.NextReviewDate.Format(time.DateOnly)
	}
	response.RespondCreated(c, gin.H{
		"success":          true,
		"item_id":          res.ID,
		"card_id":          res.ID,
		"next_review_date": next,
		"interval":         res.State.Interval,
		"repetitions":      res.State.Repetitions,
		"ease_factor":      res.State.EaseFactor,
	})
}

// GET /api/reviews/card/:id
func (h *ReviewHandler) CardHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	reviews, err := h.history.ReviewsForCard(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if reviews == nil {
		reviews = []domain.ReviewEvent{}
	}
	response.RespondOK(c, gin.H{
		"card_id":       id,
		"reviews":       reviews,
		"total_reviews": len(reviews),
	})
}

type qualityRequest struct {
	Quality *int `json:"quality" binding:"required"`
}

// POST /api/vocabulary/:id/review
func (h *ReviewHandler) SubmitVocabularyReview(c *gin.Context) {
	h.submitQuality(c, domain.KindVocabulary)
}

// POST /api/exercises/:id/review
func (h *ReviewHandler) SubmitExerciseReview(c *gin.Context) {
	h.submitQuality(c, domain.KindExercise)
}

func (h *ReviewHandler) submitQuality(c *gin.Context, kind domain.ItemKind) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req qualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.recorder.Record(c.Request.Context(), kind, id, review.Submission{Quality: *req.Quality})
	if err != nil {
		response.RespondErr(c, err)
		return
	}

	var next *string
	if res.State.NextReviewDate != nil {
		s := res.State.NextReviewDate.UTC().Format(time.RFC3339)
		next = &s
	}
	response.RespondOK(c, gin.H{
		"success":          true,
		"next_review_date": next,
		"review_interval":  res.State.Interval,
		"repetitions":      res.State.Repetitions,
		"ease_factor":      res.State.EaseFactor,
	})
}
