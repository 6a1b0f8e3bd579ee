package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sodium-tycoon/internal/models"
	"github.com/yourusername/sodium-tycoon/internal/service"
)

type MockDecisions struct {
	mock.Mock
}

func (m *MockDecisions) LatestDecision() (models.Wager, bool) {
	args := m.Called()
	return args.Get(0).(models.Wager), args.Bool(1)
}

func (m *MockDecisions) Performance(ctx context.Context, limit int) (models.Performance, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(models.Performance), args.Error(1)
}

func (m *MockDecisions) Stats() service.StatsSnapshot {
	return service.StatsSnapshot{Decisions: 3}
}

func (m *MockDecisions) RecordResult(ctx context.Context, result models.MatchResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func serve(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "sodium-tycoon", Version: "1.0.0", Logger: quietLogger()})

	rec := serve(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.0.0", body.Version)

	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, s, http.MethodGet, "/decision/latest", "").Code,
		"decision routes need a provider")
}

func TestReady(t *testing.T) {
	s := NewServer(Config{ServiceName: "sodium-tycoon", Logger: quietLogger(), DB: pinger{}})
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "/ready", "").Code)

	s.SetReady(true)
	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodGet, "/ready", "").Code)

	s.db = pinger{err: errors.New("connection refused")}
	rec := serve(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Checks["database"], "connection refused")
}

func TestLatestDecision(t *testing.T) {
	decisions := new(MockDecisions)
	s := NewServer(Config{Logger: quietLogger(), Decisions: decisions})

	decisions.On("Performance", mock.Anything, performanceWindow).Return(models.Performance{Settled: 4, Wins: 3}, nil)
	decisions.On("LatestDecision").Return(models.Wager{}, false).Once()

	rec := serve(t, s, http.MethodGet, "/decision/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	id := uuid.New()
	decisions.On("LatestDecision").Return(models.Wager{ID: id, Stake: 42, Decision: models.BetDecision{Side: models.SideBlue}}, true)

	rec = serve(t, s, http.MethodGet, "/decision/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Wager)
	assert.Equal(t, id, body.Wager.ID)
	assert.Equal(t, int64(42), body.Wager.Stake)
	assert.Equal(t, 3, body.Performance.Wins)
	assert.Equal(t, 3, body.Stats.Decisions)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, s, http.MethodPost, "/decision/latest", "").Code)
}

func TestPostResult(t *testing.T) {
	decisions := new(MockDecisions)
	s := NewServer(Config{Logger: quietLogger(), Decisions: decisions})

	valid := `{"fighter_red":"Ryu","fighter_blue":"Ken","winner":"blue","pool_red":100,"pool_blue":200,"tier":"A","match_format":"matchmaking"}`
	decisions.On("RecordResult", mock.Anything, mock.MatchedBy(func(r models.MatchResult) bool {
		return r.RedName == "Ryu" && r.Winner == models.SideBlue && r.PoolBlue == 200
	})).Return(nil).Once()
	assert.Equal(t, http.StatusAccepted, serve(t, s, http.MethodPost, "/results", valid).Code)

	assert.Equal(t, http.StatusBadRequest, serve(t, s, http.MethodPost, "/results", `{"fighter_red":`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, s, http.MethodPost, "/results", `{"odds":3}`).Code)

	decisions.On("RecordResult", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: same fighter", models.ErrInvalidMatch)).Once()
	assert.Equal(t, http.StatusUnprocessableEntity, serve(t, s, http.MethodPost, "/results", valid).Code)

	decisions.On("RecordResult", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	assert.Equal(t, http.StatusInternalServerError, serve(t, s, http.MethodPost, "/results", valid).Code)

	decisions.AssertExpectations(t)
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "sodium_tycoon_wagers_recorded_total 1\n")
	})
	s := NewServer(Config{Logger: quietLogger(), MetricsHandler: metrics, MetricsPath: "/prom"})

	rec := serve(t, s, http.MethodGet, "/prom", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wagers_recorded_total")
}
