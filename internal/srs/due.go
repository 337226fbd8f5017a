package srs

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dueable is anything the due selector can classify and order.
type Dueable interface {
	// DueAt returns the next scheduled review, nil when never reviewed.
	DueAt() *time.Time
	// Level is the secondary sort key (difficulty or level).
	Level() int
	// ItemID is the final tie-break.
	ItemID() int64
}

// IsDue reports whether an item scheduled at due is reviewable at asOf.
func IsDue(due *time.Time, asOf time.Time) bool {
	return due == nil || !due.After(asOf)
}

// IsNew reports whether an item has never been reviewed.
func IsNew(due *time.Time) bool {
	return due == nil
}

// Selection is the result of SelectDue.
type Selection[T Dueable] struct {
	Items    []T
	NewCount int
}

// SelectDue filters pool down to items due at asOf, orders them (never
// reviewed first, then oldest due date, then level, then id) and keeps at
// most limit of them. A non-positive limit keeps everything.
func SelectDue[T Dueable](pool []T, asOf time.Time, limit int) Selection[T] {
	due := make([]T, 0, len(pool))
	for _, it := range pool {
		if IsDue(it.DueAt(), asOf) {
			due = append(due, it)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return lessDue(due[i], due[j])
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	sel := Selection[T]{Items: due}
	for _, it := range due {
		if IsNew(it.DueAt()) {
			sel.NewCount++
		}
	}
	return sel
}

func lessDue(a, b Dueable) bool {
	da, db := a.DueAt(), b.DueAt()
	switch {
	case da == nil && db != nil:
		return true
	case da != nil && db == nil:
		return false
	case da != nil && db != nil && !da.Equal(*db):
		return da.Before(*db)
	}
	if a.Level() != b.Level() {
		return a.Level() < b.Level()
	}
	return a.ItemID() < b.ItemID()
}

// ParseLimit turns a raw query value into a usable limit: missing, malformed
// or non-positive input yields def, anything above max is clamped to max.
func ParseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
