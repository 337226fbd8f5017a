package srs

import (
	"reflect"
	"testing"
	"time"
)

type item struct {
	id    int64
	level int
	due   *time.Time
}

func (i item) DueAt() *time.Time { return i.due }
func (i item) Level() int        { return i.level }
func (i item) ItemID() int64     { return i.id }

func at(d time.Duration) *time.Time {
	v := t0.Add(d)
	return &v
}

func ids(items []item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.id)
	}
	return out
}

func TestClassification(t *testing.T) {
	testCases := []struct {
		name    string
		due     *time.Time
		wantDue bool
		wantNew bool
	}{
		{"never reviewed", nil, true, true},
		{"scheduled in the future", at(time.Hour), false, false},
		{"scheduled in the past", at(-time.Hour), true, false},
		{"scheduled exactly now", at(0), true, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDue(tc.due, t0); got != tc.wantDue {
				t.Errorf("IsDue: expected %v, got %v", tc.wantDue, got)
			}
			if got := IsNew(tc.due); got != tc.wantNew {
				t.Errorf("IsNew: expected %v, got %v", tc.wantNew, got)
			}
		})
	}
}

func TestSelectDueOrdering(t *testing.T) {
	pool := []item{
		{id: 1, level: 1, due: at(-2 * time.Hour)},
		{id: 2, level: 3, due: nil},
		{id: 3, level: 1, due: at(48 * time.Hour)},
		{id: 4, level: 1, due: nil},
		{id: 5, level: 2, due: at(-48 * time.Hour)},
		{id: 6, level: 1, due: at(-48 * time.Hour)},
		{id: 7, level: 1, due: nil},
	}

	sel := SelectDue(pool, t0, 0)
	want := []int64{4, 7, 2, 6, 5, 1}
	if got := ids(sel.Items); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected order %v, but got %v", want, got)
	}
	if sel.NewCount != 3 {
		t.Errorf("Expected 3 new items, but got %d", sel.NewCount)
	}

	again := SelectDue(pool, t0, 0)
	if !reflect.DeepEqual(ids(again.Items), ids(sel.Items)) {
		t.Errorf("Expected repeated selection to be identical, got %v and %v", ids(sel.Items), ids(again.Items))
	}
}

func TestSelectDueLimitCountsNewWithinResult(t *testing.T) {
	pool := []item{
		{id: 1, due: at(-time.Hour)},
		{id: 2, due: nil},
		{id: 3, due: nil},
	}
	sel := SelectDue(pool, t0, 1)
	if len(sel.Items) != 1 || sel.Items[0].id != 2 {
		t.Fatalf("Expected [2], but got %v", ids(sel.Items))
	}
	if sel.NewCount != 1 {
		t.Errorf("Expected 1 new item, but got %d", sel.NewCount)
	}
}

func TestSelectDueEmptyPool(t *testing.T) {
	sel := SelectDue([]item(nil), t0, 20)
	if len(sel.Items) != 0 || sel.NewCount != 0 {
		t.Errorf("Expected empty selection, got %+v", sel)
	}
}

func TestParseLimit(t *testing.T) {
	testCases := []struct {
		raw  string
		want int
	}{
		{"", 20},
		{"abc", 20},
		{"0", 20},
		{"-5", 20},
		{"2.5", 20},
		{"7", 7},
		{"50", 50},
		{"500", 50},
	}
	for _, tc := range testCases {
		if got := ParseLimit(tc.raw, 20, 50); got != tc.want {
			t.Errorf("ParseLimit(%q): expected %d, got %d", tc.raw, tc.want, got)
		}
	}
}

func TestPreview(t *testing.T) {
	preview := Preview(DefaultEaseFactor)
	if len(preview) != 6 {
		t.Fatalf("Expected 6 quality levels, got %d", len(preview))
	}
	for _, p := range preview {
		if len(p.Intervals) != PreviewReviews {
			t.Errorf("quality %d: expected %d intervals, got %d", p.Quality, PreviewReviews, len(p.Intervals))
		}
		if !p.Quality.Passed() {
			for _, iv := range p.Intervals {
				if iv != 1 {
					t.Errorf("quality %d: expected every interval to be 1, got %v", p.Quality, p.Intervals)
					break
				}
			}
		}
	}

	perfect := preview[Perfect].Intervals
	for i := 2; i < len(perfect); i++ {
		if perfect[i] <= perfect[i-1] {
			t.Errorf("Expected perfect intervals to grow, got %v", perfect)
			break
		}
	}
	if preview[Perfect].FinalEaseFactor != 3.5 {
		t.Errorf("Expected final ease factor 3.5, got %v", preview[Perfect].FinalEaseFactor)
	}

	higher := Preview(3.0)[Perfect].Intervals
	if higher[PreviewReviews-1] <= perfect[PreviewReviews-1] {
		t.Errorf("Expected a higher starting ease factor to grow intervals faster")
	}
}
