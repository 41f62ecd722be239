package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"socialpulse/backend/internal/engine"
	"socialpulse/backend/internal/graph"
	"socialpulse/backend/pkg/config"
	apperrors "socialpulse/backend/pkg/errors"
)

// newTestRouter builds the router without a live store. Only routes that
// reject input before reaching the store are exercised here; everything
// touching Neo4j is covered by the graph package's integration tests.
func newTestRouter(adminToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:              "test",
		StoreTimeout:     time.Second,
		ScoringWorkers:   1,
		ScoringBatchSize: 10,
		AdminToken:       adminToken,
	}
	repo := graph.NewRepository(nil, cfg.StoreTimeout)
	eng := engine.NewEngine(repo, cfg)
	return setupRouter(zap.NewNop(), cfg, repo, eng)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/follows", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestFollowRejectsMalformedBody(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/follows", strings.NewReader(`{"follower_id": "alice"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFollowRejectsSelfFollow(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/follows",
		strings.NewReader(`{"follower_id": "alice", "followed_id": "alice"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot follow")
}

func TestInteractionRejectsUnknownType(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/interactions",
		strings.NewReader(`{"user_id": "alice", "post_id": "p1", "interaction_type": "POKED"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkFollowAllSkippedAnswersBadRequest(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/follows/bulk", strings.NewReader(
		`{"rows": [{"follower_id": "alice", "followed_id": "alice"}, {"follower_id": "", "followed_id": "bob"}]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string `json:"error"`
		Result struct {
			Loaded  int `json:"loaded"`
			Skipped int `json:"skipped"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "skipped")
	assert.Equal(t, 0, body.Result.Loaded)
	assert.Equal(t, 2, body.Result.Skipped)
}

func TestPathRequiresBothEndpoints(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/path?src=alice", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInfluencersRejectsBadMinFollowers(t *testing.T) {
	router := newTestRouter("")

	for _, value := range []string{"abc", "-1", "1.5"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/influencers?min_followers="+value, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "min_followers=%s", value)
	}
}

func TestEngagementRejectsBadTimestamp(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/users/alice/engagement?start=yesterday", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start")
}

func TestDropoffRejectsBadWindow(t *testing.T) {
	router := newTestRouter("")

	for _, value := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/users/alice/engagement/dropoff?window_days="+value, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "window_days=%s", value)
	}
}

func TestAdminDropDisabledWithoutToken(t *testing.T) {
	router := newTestRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/admin/data", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminDropRejectsWrongToken(t *testing.T) {
	router := newTestRouter("secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/admin/data", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", apperrors.NewInvalidInput("field", "bad"), http.StatusBadRequest},
		{"self follow", apperrors.NewSelfFollow("alice"), http.StatusBadRequest},
		{"not found", apperrors.NewNodeNotFound("user", "ghost", nil), http.StatusNotFound},
		{"store unavailable", apperrors.NewStoreUnavailable("query", nil), http.StatusServiceUnavailable},
		{"context timeout", apperrors.NewContextTimeout("query", time.Second), http.StatusGatewayTimeout},
		{"partial batch", apperrors.NewPartialBatch("batch-1", 3), http.StatusBadRequest},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestParseTimeParam(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantOK bool
		want   *time.Time
	}{
		{"absent", "", true, nil},
		{"rfc3339", "start=2024-06-01T12:00:00Z", true, timePtr(2024, 6, 1, 12)},
		{"date only", "start=2024-06-01", true, timePtr(2024, 6, 1, 0)},
		{"garbage", "start=last-tuesday", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			got, ok := parseTimeParam(c, "start")
			assert.Equal(t, tt.wantOK, ok)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.True(t, tt.want.Equal(*got))
			}
		})
	}
}

func timePtr(year int, month time.Month, day, hour int) *time.Time {
	ts := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &ts
}
