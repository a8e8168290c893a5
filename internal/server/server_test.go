package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashvocab/internal/database"
	"github.com/example/flashvocab/internal/review"
	"github.com/example/flashvocab/pkg/models"
)

const testSecret = "test-secret"

type testEnv struct {
	server   *Server
	db       *sqlx.DB
	words    *database.WordRepository
	progress *database.ProgressRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	words := database.NewWordRepository(db)
	progress := database.NewProgressRepository(db)
	stats := database.NewStatisticsRepository(db)

	selector := review.NewSelector(words)
	recorder := review.NewRecorder(progress, database.IsForeignKeyViolation, nil)
	aggregator := review.NewAggregator(stats, nil, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(selector, recorder, aggregator, NewSessionManager(time.Minute), testSecret, logger)

	return &testEnv{server: server, db: db, words: words, progress: progress}
}

func (e *testEnv) seedWord(t *testing.T, term, translation string) *models.Word {
	t.Helper()
	word := &models.Word{Term: term, Translation: translation}
	require.NoError(t, e.words.Create(context.Background(), word))
	return word
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuestReviewFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedWord(t, "hund", "dog")

	rec := env.request(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := env.decodeSession(t, rec)
	require.NotEmpty(t, resp.Session)
	assert.Equal(t, review.PhaseHidden, resp.State.Phase)
	require.NotNil(t, resp.State.Word)
	assert.Equal(t, "hund", resp.State.Word.Term)

	rec = env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/reveal", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, review.PhaseRevealed, env.decodeSession(t, rec).State.Phase)

	rec = env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/decide", "",
		map[string]string{"decision": "known"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, review.PhaseHidden, env.decodeSession(t, rec).State.Phase)

	// Guest decisions are never persisted.
	var count int
	require.NoError(t, env.db.Get(&count, "SELECT COUNT(*) FROM progress"))
	assert.Equal(t, 0, count)
}

func TestAuthenticatedReviewPersistsDecision(t *testing.T) {
	env := newTestEnv(t)
	word := env.seedWord(t, "katze", "cat")
	token := signToken(t, "user-1")

	rec := env.request(t, http.MethodPost, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := env.decodeSession(t, rec)

	env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/reveal", token, nil)
	rec = env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/decide", token,
		map[string]string{"decision": "unknown"})
	require.Equal(t, http.StatusOK, rec.Code)

	record, err := env.progress.GetByUserAndWord(context.Background(), "user-1", word.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnknown, record.Status)
}

func TestSessionEndpointRejections(t *testing.T) {
	env := newTestEnv(t)
	env.seedWord(t, "brot", "bread")

	rec := env.request(t, http.MethodPost, "/api/v1/sessions", "", nil)
	resp := env.decodeSession(t, rec)

	// Reveal twice: the second is out of phase.
	env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/reveal", "", nil)
	rec = env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/reveal", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/decide", "",
		map[string]string{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/sessions/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmptyVocabularySurfacesRetryableState(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := env.decodeSession(t, rec)
	assert.Equal(t, review.PhaseError, resp.State.Phase)
	assert.NotEmpty(t, resp.State.Error)

	// Content arrives; a retry recovers the same session.
	env.seedWord(t, "milch", "milk")
	rec = env.request(t, http.MethodPost, "/api/v1/sessions/"+resp.Session+"/retry", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, review.PhaseHidden, env.decodeSession(t, rec).State.Phase)
}

func TestStatsRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/stats", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatsDocument(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user-1")

	a := env.seedWord(t, "eins", "one")
	b := env.seedWord(t, "zwei", "two")
	env.seedWord(t, "drei", "three")

	ctx := context.Background()
	_, err := env.progress.Upsert(ctx, "user-1", a.ID, models.StatusKnown, time.Now().UTC())
	require.NoError(t, err)
	_, err = env.progress.Upsert(ctx, "user-1", b.ID, models.StatusUnknown, time.Now().UTC())
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 2, stats.ThisWeek)
	// remaining = 3 words - 1 known
	assert.Equal(t, 2, stats.Remaining)
	assert.Equal(t, 1, stats.Breakdown.Known)
	assert.Equal(t, 1, stats.Breakdown.Unknown)
	assert.Equal(t, 1, stats.Streak.Current)
}
