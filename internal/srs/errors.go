package srs

import "errors"

// ErrInvalidRating is returned for a quality outside [0,5].
var ErrInvalidRating = errors.New("srs: invalid rating")
