package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/kapp/internal/review"
	"github.com/conorfennell/kapp/internal/srs"
	"github.com/conorfennell/kapp/internal/storage"
)

const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal_error"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr picks the status and code for err: rejected input is 400,
// missing rows are 404, everything else is a 500 whose cause is not echoed.
func RespondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, review.ErrValidation),
		errors.Is(err, review.ErrDisabled),
		errors.Is(err, srs.ErrInvalidRating):
		RespondError(c, http.StatusBadRequest, CodeValidation, err)
	case errors.Is(err, review.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		RespondError(c, http.StatusNotFound, CodeNotFound, err)
	default:
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, CodeInternal, errors.New("internal server error"))
	}
}

// BadRequest reports a malformed request.
func BadRequest(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, CodeValidation, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
