package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/kapp/internal/domain"
	httpH "github.com/conorfennell/kapp/internal/http/handlers"
	"github.com/conorfennell/kapp/internal/review"
	"github.com/conorfennell/kapp/internal/storage"
	ksync "github.com/conorfennell/kapp/internal/sync"
)

var t0 = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

type testApp struct {
	db     *storage.DB
	router *gin.Engine
}

func newTestApp(t *testing.T, opts ...review.RecorderOption) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open(storage.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts = append([]review.RecorderOption{review.WithClock(func() time.Time { return t0 })}, opts...)
	recorder := review.NewRecorder(db, nil, opts...)
	queue := review.NewQueue(db, review.QueueConfig{VocabularyEnabled: true, ExercisesEnabled: true})
	syncer := ksync.New(db, nil, t.TempDir())

	router := NewRouter(RouterConfig{
		ReviewHandler:     httpH.NewReviewHandler(recorder, db),
		CardHandler:       httpH.NewCardHandler(db, queue),
		VocabularyHandler: httpH.NewVocabularyHandler(db, queue),
		ExerciseHandler:   httpH.NewExerciseHandler(queue),
		StatsHandler:      httpH.NewStatsHandler(db),
		SourceHandler:     httpH.NewSourceHandler(db, syncer),
		HealthHandler:     httpH.NewHealthHandler(db),
	})
	return &testApp{db: db, router: router}
}

func (a *testApp) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *testApp) seedCards(t *testing.T, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	deck, err := a.db.UpsertDeck(ctx, "basics", nil)
	require.NoError(t, err)
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id, err := a.db.InsertCard(ctx, deck, domain.Card{
			Korean:  "카드",
			English: "card",
			Hash:    "hash-" + string(rune('a'+i)),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func (a *testApp) seedVocabulary(t *testing.T) int64 {
	t.Helper()
	v := &domain.VocabularyItem{Korean: "사과", English: "apple", Category: "food", DifficultyLevel: 1}
	_, err := a.db.UpsertVocabulary(context.Background(), v)
	require.NoError(t, err)
	return v.ID
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	status, body := app.do(t, http.MethodGet, "/healthcheck", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestSubmitCardReview(t *testing.T) {
	app := newTestApp(t)
	id := app.seedCards(t, 1)[0]

	status, body := app.do(t, http.MethodPost, "/api/reviews",
		`{"item_id": `+itoa(id)+`, "quality_rating": 4, "time_spent": 3.2}`)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, id, body["item_id"])
	assert.Equal(t, "2025-06-16", body["next_review_date"])
	assert.EqualValues(t, 1, body["interval"])
	assert.EqualValues(t, 1, body["repetitions"])
	assert.InDelta(t, 2.5, body["ease_factor"], 1e-9)

	status, body = app.do(t, http.MethodGet, "/api/reviews/card/"+itoa(id), "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total_reviews"])
}

func TestSubmitCardReviewRejections(t *testing.T) {
	app := newTestApp(t)
	id := itoa(app.seedCards(t, 1)[0])

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"quality above range", `{"item_id": ` + id + `, "quality_rating": 6}`, http.StatusBadRequest, "validation_error"},
		{"quality below range", `{"item_id": ` + id + `, "quality_rating": -1}`, http.StatusBadRequest, "validation_error"},
		{"fractional quality", `{"item_id": ` + id + `, "quality_rating": 3.5}`, http.StatusBadRequest, "validation_error"},
		{"string quality", `{"item_id": ` + id + `, "quality_rating": "4"}`, http.StatusBadRequest, "validation_error"},
		{"missing quality", `{"item_id": ` + id + `}`, http.StatusBadRequest, "validation_error"},
		{"missing item", `{"quality_rating": 4}`, http.StatusBadRequest, "validation_error"},
		{"malformed json", `{"item_id":`, http.StatusBadRequest, "validation_error"},
		{"unknown card", `{"item_id": 999, "quality_rating": 4}`, http.StatusNotFound, "not_found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := app.do(t, http.MethodPost, "/api/reviews", tc.body)
			assert.Equal(t, tc.wantStatus, status, body)
			assert.Equal(t, tc.wantCode, errorCode(body))
		})
	}

	card, err := app.db.GetCard(context.Background(), mustParse(t, id))
	require.NoError(t, err)
	assert.Equal(t, 0, card.Repetitions)
	assert.Nil(t, card.NextReviewDate)
}

func TestCardHistoryErrors(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, http.MethodGet, "/api/reviews/card/42", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorCode(body))

	status, body = app.do(t, http.MethodGet, "/api/reviews/card/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", errorCode(body))
}

func TestDueCards(t *testing.T) {
	app := newTestApp(t)
	app.seedCards(t, 3)

	status, body := app.do(t, http.MethodGet, "/api/cards/due?limit=2", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total_due"])
	assert.EqualValues(t, 2, body["new_items"])
	assert.Len(t, body["cards"], 2)

	status, _ = app.do(t, http.MethodGet, "/api/cards/due?level=abc", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = app.do(t, http.MethodGet, "/api/cards?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["total"])
	assert.Len(t, body["cards"], 1)

	status, body = app.do(t, http.MethodGet, "/api/decks", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["decks"], 1)
}

func TestVocabularyReview(t *testing.T) {
	app := newTestApp(t)
	id := itoa(app.seedVocabulary(t))

	status, body := app.do(t, http.MethodGet, "/api/vocabulary/due", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total_due"])
	assert.EqualValues(t, 1, body["new_items"])

	status, body = app.do(t, http.MethodPost, "/api/vocabulary/"+id+"/review", `{"quality": 5}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2025-06-16T10:30:00Z", body["next_review_date"])
	assert.EqualValues(t, 1, body["review_interval"])
	assert.EqualValues(t, 1, body["repetitions"])
	assert.InDelta(t, 2.6, body["ease_factor"], 1e-9)

	status, body = app.do(t, http.MethodPost, "/api/vocabulary/"+id+"/review", `{"quality": 9}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", errorCode(body))

	status, body = app.do(t, http.MethodPost, "/api/vocabulary/999/review", `{"quality": 3}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorCode(body))
}

func TestVocabularyListingAndPractice(t *testing.T) {
	app := newTestApp(t)
	id := itoa(app.seedVocabulary(t))

	status, body := app.do(t, http.MethodGet, "/api/vocabulary?category=food&limit=500", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 100, body["limit"])

	status, body = app.do(t, http.MethodGet, "/api/vocabulary/categories", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["categories"], 1)

	status, body = app.do(t, http.MethodPost, "/api/vocabulary/"+id+"/practice", `{"correct": true}`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["times_practiced"])
	assert.InDelta(t, 100.0, body["accuracy_rate"], 1e-9)

	status, _ = app.do(t, http.MethodPost, "/api/vocabulary/"+id+"/practice", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = app.do(t, http.MethodGet, "/api/vocabulary/"+id, "")
	require.Equal(t, http.StatusOK, status)
	item, _ := body["item"].(map[string]any)
	assert.Equal(t, "사과", item["korean"])
	assert.InDelta(t, 100.0, item["accuracy_rate"], 1e-9)
}

func TestDisabledVocabularyReview(t *testing.T) {
	app := newTestApp(t, review.WithDisabled(domain.KindVocabulary))
	id := itoa(app.seedVocabulary(t))

	status, body := app.do(t, http.MethodPost, "/api/vocabulary/"+id+"/review", `{"quality": 4}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", errorCode(body))
}

func TestExerciseReview(t *testing.T) {
	app := newTestApp(t)
	ex := &domain.Exercise{LessonTitle: "Lesson 1", ExerciseType: "translate", Question: "hello?", CorrectAnswer: "안녕"}
	require.NoError(t, app.db.InsertExercise(context.Background(), ex))

	status, body := app.do(t, http.MethodGet, "/api/exercises/due", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["new_items"])

	status, body = app.do(t, http.MethodPost, "/api/exercises/"+itoa(ex.ID)+"/review", `{"quality": 4}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, body["repetitions"])
	assert.InDelta(t, 2.5, body["ease_factor"], 1e-9)

	// Reviewed at t0, so it is due again by the wall clock but no longer new.
	status, body = app.do(t, http.MethodGet, "/api/exercises/due", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total_due"])
	assert.EqualValues(t, 0, body["new_items"])
}

func TestPreviewAndStats(t *testing.T) {
	app := newTestApp(t)
	app.seedCards(t, 2)

	status, body := app.do(t, http.MethodGet, "/api/srs/preview", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["qualities"], 6)

	status, _ = app.do(t, http.MethodGet, "/api/srs/preview?ease_factor=1.0", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = app.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total_cards"])
	assert.EqualValues(t, 2, body["cards_due_today"])
}

func TestSources(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()
	deck := "K: 안녕하세요\nE: hello\n---\nK: 감사합니다\nE: thank you\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greetings.md"), []byte(deck), 0o644))

	payload, err := json.Marshal(map[string]string{"path": dir})
	require.NoError(t, err)

	status, body := app.do(t, http.MethodPost, "/api/sources", string(payload))
	require.Equal(t, http.StatusCreated, status, body)
	src, _ := body["source"].(map[string]any)
	srcID := int64(src["id"].(float64))

	status, _ = app.do(t, http.MethodPost, "/api/sources", string(payload))
	assert.Equal(t, http.StatusConflict, status)

	status, _ = app.do(t, http.MethodPost, "/api/sources", `{"path": "  "}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = app.do(t, http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusOK, status)
	reports, _ := body["reports"].([]any)
	require.Len(t, reports, 1)
	report, _ := reports[0].(map[string]any)
	assert.EqualValues(t, 2, report["inserted_cards"])

	status, body = app.do(t, http.MethodGet, "/api/sources", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["sources"], 1)

	status, _ = app.do(t, http.MethodDelete, "/api/sources/"+itoa(srcID), "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = app.do(t, http.MethodDelete, "/api/sources/"+itoa(srcID), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func mustParse(t *testing.T, s string) int64 {
	t.Helper()
	id, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return id
}
