// Package srs implements SM-2 spaced repetition scheduling and due-item
// selection. Everything here is pure: no I/O, no clock reads.
package srs

import (
	"fmt"
	"math"
	"time"
)

// Quality is the learner's 0-5 self-assessment of recall.
//
// 5: perfect response
// 4: correct after hesitation
// 3: correct with serious difficulty
// 2: incorrect, but the correct one was remembered
// 1: incorrect, the correct one seemed familiar
// 0: complete blackout
type Quality int

const (
	Blackout Quality = iota
	Familiar
	Remembered
	Difficult
	Hesitant
	Perfect
)

// PassThreshold is the lowest quality that counts as a successful review.
const PassThreshold = Difficult

const (
	// MinEaseFactor is the floor the ease factor is clamped to.
	MinEaseFactor = 1.3
	// DefaultEaseFactor is assigned to items at creation.
	DefaultEaseFactor = 2.5
)

// Validate reports whether q lies in [0,5].
func (q Quality) Validate() error {
	if q < Blackout || q > Perfect {
		return fmt.Errorf("%w: quality must be between 0 and 5, got %d", ErrInvalidRating, int(q))
	}
	return nil
}

func (q Quality) String() string {
	switch q {
	case Blackout:
		return "blackout"
	case Familiar:
		return "familiar"
	case Remembered:
		return "remembered"
	case Difficult:
		return "difficult"
	case Hesitant:
		return "hesitant"
	case Perfect:
		return "perfect"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// Passed reports whether q is a successful review.
func (q Quality) Passed() bool { return q >= PassThreshold }

// Granularity selects how the next review date is anchored.
type Granularity int

const (
	// TimestampGranularity schedules relative to the exact reference instant.
	TimestampGranularity Granularity = iota
	// DateGranularity schedules relative to the reference instant's UTC calendar day.
	DateGranularity
)

func (g Granularity) String() string {
	switch g {
	case DateGranularity:
		return "date"
	default:
		return "timestamp"
	}
}

// State is the scheduling shape shared by every reviewable item.
type State struct {
	Repetitions    int
	Interval       int
	EaseFactor     float64
	NextReviewDate *time.Time
}

// NewState returns the creation-time defaults.
func NewState() State {
	return State{EaseFactor: DefaultEaseFactor}
}

// Apply runs one SM-2 step for quality q against s, anchored at now.
func Apply(q Quality, s State, now time.Time, g Granularity) (State, error) {
	if err := q.Validate(); err != nil {
		return s, err
	}

	ef := s.EaseFactor
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}
	reps := s.Repetitions
	if reps < 0 {
		reps = 0
	}

	var next State
	if !q.Passed() {
		next.Repetitions = 0
		next.Interval = 1
		next.EaseFactor = ef
	} else {
		next.Repetitions = reps + 1
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.RoundToEven(float64(s.Interval) * ef))
		}
		if next.Interval < 1 {
			next.Interval = 1
		}
		next.EaseFactor = math.Max(MinEaseFactor, ef+easeAdjustment(q))
	}

	due := NextReviewDate(now, next.Interval, g)
	next.NextReviewDate = &due
	return next, nil
}

// easeAdjustment is EF' - EF: +0.10 at 5, 0 at 4, -0.14 at 3.
func easeAdjustment(q Quality) float64 {
	d := float64(Perfect - q)
	return 0.1 - d*(0.08+d*0.02)
}

// NextReviewDate returns the instant interval days after now at granularity g.
func NextReviewDate(now time.Time, interval int, g Granularity) time.Time {
	now = now.UTC()
	if g == DateGranularity {
		return Today(now).AddDate(0, 0, interval)
	}
	return now.Add(time.Duration(interval) * 24 * time.Hour)
}

// Today truncates t to midnight UTC.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
