package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sodium-tycoon/internal/config"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

const currentMatchPayload = `{
  "fighter_red": "Ryu",
  "fighter_blue": "Ken",
  "tier": "a",
  "match_format": "matchmaking",
  "fighter_red_info": {
    "id": 1, "name": "Ryu", "tier": "A", "elo": 1600, "tier_elo": 1580,
    "stats": {"total_matches": 3, "win_rate": 66.6},
    "matches": [
      {"id": 10, "fighter_red": 1, "fighter_blue": 2, "winner": 1, "bet_red": 500, "bet_blue": 300, "tier": "A", "match_format": "matchmaking", "date": "2024-01-02T10:00:00"},
      {"id": 11, "fighter_red": 2, "fighter_blue": 1, "winner": 1, "bet_red": null, "bet_blue": 100, "tier": "A", "match_format": "matchmaking", "date": "2024-01-03T10:00:00+00:00"}
    ]
  },
  "fighter_blue_info": null
}`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(serverURL string, cfg config.SaltyBoyConfig) *SaltyBoyClient {
	cfg.APIURL = serverURL
	httpCfg := HTTPClientConfig{
		Timeout:      time.Second,
		MaxRetries:   cfg.RetryAttempts,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
		RateLimit:    1000,
	}
	return NewSaltyBoyClient(NewRateLimitedHTTPClient(httpCfg, quietLogger()), cfg, quietLogger())
}

func TestFetchCurrentMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, currentMatchInfoPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(currentMatchPayload))
	}))
	defer server.Close()

	client := newTestClient(server.URL, config.SaltyBoyConfig{})
	in, err := client.FetchCurrentMatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Ryu", in.RedName)
	assert.Equal(t, "Ken", in.BlueName)
	assert.Equal(t, models.TierA, in.Tier)
	assert.Equal(t, models.MatchFormatMatchmaking, in.Format)
	assert.Nil(t, in.Blue)
	assert.False(t, in.HasHistory())

	require.NotNil(t, in.Red)
	assert.Equal(t, int64(1), in.Red.ID)
	assert.Equal(t, 1580.0, in.Red.TierElo)
	assert.InDelta(t, 0.666, in.Red.Stats.WinRate, 1e-9)
	require.Len(t, in.Red.Matches, 2)
	assert.Equal(t, int64(0), in.Red.Matches[1].StakeRed)
	assert.Equal(t, 2024, in.Red.Matches[0].Date.Year())
}

func TestFetchCurrentMatchRejectsMalformedHistory(t *testing.T) {
	tests := []struct {
		name  string
		match string
	}{
		{
			name:  "winner not in the fight",
			match: `{"id": 12, "fighter_red": 1, "fighter_blue": 3, "winner": 4, "bet_red": 1, "bet_blue": 1}`,
		},
		{
			name:  "negative pot",
			match: `{"id": 13, "fighter_red": 1, "fighter_blue": 3, "winner": 1, "bet_red": -5, "bet_blue": 1}`,
		},
		{
			name:  "bad date",
			match: `{"id": 14, "fighter_red": 1, "fighter_blue": 3, "winner": 1, "date": "yesterday"}`,
		},
		{
			name:  "match of another fighter",
			match: `{"id": 15, "fighter_red": 7, "fighter_blue": 8, "winner": 7}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `{"fighter_red": "Ryu", "fighter_blue": "Ken", "tier": "A",
				"fighter_red_info": {"id": 1, "name": "Ryu", "matches": [
					{"id": 10, "fighter_red": 1, "fighter_blue": 2, "winner": 1, "bet_red": 500, "bet_blue": 300},
					` + tt.match + `]}}`
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(payload))
			}))
			defer server.Close()

			client := newTestClient(server.URL, config.SaltyBoyConfig{})
			in, err := client.FetchCurrentMatch(context.Background())

			require.Error(t, err)
			assert.Nil(t, in)
			assert.ErrorIs(t, err, models.ErrInvalidMatch)
			assert.ErrorIs(t, err, models.ErrDataUnavailable)

			var dsErr DataSourceError
			require.ErrorAs(t, err, &dsErr)
			assert.Equal(t, ErrCodeInvalidData, dsErr.Code)
		})
	}
}

func TestFetchCurrentMatchFailuresAreDataUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		noMatch bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"fighter_red": `))
			},
		},
		{
			name: "invalid fighter",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"fighter_red": "A", "fighter_blue": "B", "fighter_red_info": {"id": -4, "name": "A"}}`))
			},
		},
		{
			name: "no open match",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			noMatch: true,
		},
		{
			name: "empty payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
			noMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := newTestClient(server.URL, config.SaltyBoyConfig{})
			_, err := client.FetchCurrentMatch(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrDataUnavailable))
			assert.Equal(t, tt.noMatch, IsNoOpenMatch(err))
		})
	}
}

func TestFetchCurrentMatchRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(currentMatchPayload))
	}))
	defer server.Close()

	client := newTestClient(server.URL, config.SaltyBoyConfig{RetryAttempts: 3})
	in, err := client.FetchCurrentMatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Ryu", in.RedName)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchCurrentMatchCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(currentMatchPayload))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(server.URL, config.SaltyBoyConfig{})
	_, err := client.FetchCurrentMatch(ctx)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestFetchBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("PHPSESSID")
		if err != nil || cookie.Value != "session-token" {
			_, _ = w.Write([]byte(`<html><body>sign in</body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><span class="dollar" id="balance">1,234,567</span></html>`))
	}))
	defer server.Close()

	client := newTestClient("http://unused", config.SaltyBoyConfig{
		BalanceURL:    server.URL,
		SessionCookie: "session-token",
	})
	balance, err := client.FetchBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1234567), balance)

	anonymous := newTestClient("http://unused", config.SaltyBoyConfig{BalanceURL: server.URL})
	_, err = anonymous.FetchBalance(context.Background())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestFetchBalanceDefault(t *testing.T) {
	client := newTestClient("http://unused", config.SaltyBoyConfig{DefaultBankroll: 2500})

	balance, err := client.FetchBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2500), balance)
}

func TestParseBalanceLegacyMarkup(t *testing.T) {
	balance, err := parseBalance([]byte(`<span id="b" class="x">9,001</span>`))
	require.NoError(t, err)
	assert.Equal(t, int64(9001), balance)
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, models.TierX, parseTier("x"))
	assert.Equal(t, models.TierPotato, parseTier(" P "))
	assert.Equal(t, models.TierUnknown, parseTier("Z"))
	assert.Equal(t, models.TierUnknown, parseTier(""))
}
