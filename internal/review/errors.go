package review

import "errors"

var (
	// ErrValidation marks a rejected submission, such as a quality outside [0,5].
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a review of an item that does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrPersistence marks a failed transaction. Nothing from the review was saved.
	ErrPersistence = errors.New("failed to persist review")
	// ErrDisabled marks a review of an item kind that is switched off.
	ErrDisabled = errors.New("review of this item kind is disabled")
)
