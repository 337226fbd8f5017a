package srs

import (
	"math"
	"time"
)

// PreviewReviews is how many consecutive reviews Preview simulates.
const PreviewReviews = 10

// QualityPreview is the simulated outcome of repeatedly answering with one quality.
type QualityPreview struct {
	Quality         Quality `json:"quality"`
	Intervals       []int   `json:"intervals"`
	FinalEaseFactor float64 `json:"final_ease_factor"`
}

// Preview simulates PreviewReviews reviews at each quality from a fresh item
// with the given starting ease factor.
func Preview(easeFactor float64) []QualityPreview {
	anchor := time.Unix(0, 0).UTC()
	out := make([]QualityPreview, 0, int(Perfect)+1)
	for q := Blackout; q <= Perfect; q++ {
		s := State{EaseFactor: easeFactor}
		p := QualityPreview{Quality: q, Intervals: make([]int, 0, PreviewReviews)}
		for i := 0; i < PreviewReviews; i++ {
			// q is always in range here.
			s, _ = Apply(q, s, anchor, TimestampGranularity)
			p.Intervals = append(p.Intervals, s.Interval)
		}
		p.FinalEaseFactor = math.Round(s.EaseFactor*100) / 100
		out = append(out, p)
	}
	return out
}
