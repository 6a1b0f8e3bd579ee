package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sodium-tycoon/internal/config"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

const (
	saltyBoySourceName   = "saltyboy"
	currentMatchInfoPath = "/api/current_match_info/"
)

// balancePattern matches both the current and legacy wallet markup
var balancePattern = regexp.MustCompile(`<span[^>]*id="(?:balance|b)"[^>]*>([\d,]+)<`)

var matchDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// SaltyBoyClient implements MatchSource against the SaltyBoy REST API
type SaltyBoyClient struct {
	httpClient      *RateLimitedHTTPClient
	baseURL         string
	balanceURL      string
	sessionCookie   string
	defaultBankroll int64
	logger          *logrus.Entry
}

// CurrentMatchInfo is the payload of the current match endpoint
type CurrentMatchInfo struct {
	FighterRed      string       `json:"fighter_red"`
	FighterBlue     string       `json:"fighter_blue"`
	Tier            string       `json:"tier"`
	MatchFormat     string       `json:"match_format"`
	FighterRedInfo  *FighterInfo `json:"fighter_red_info"`
	FighterBlueInfo *FighterInfo `json:"fighter_blue_info"`
}

// FighterInfo is a fighter record as served by the API
type FighterInfo struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Tier    string      `json:"tier"`
	Elo     float64     `json:"elo"`
	TierElo float64     `json:"tier_elo"`
	Matches []MatchInfo `json:"matches"`
	Stats   *StatsInfo  `json:"stats"`
}

// MatchInfo is a historical match as served by the API
type MatchInfo struct {
	ID          int64  `json:"id"`
	FighterRed  int64  `json:"fighter_red"`
	FighterBlue int64  `json:"fighter_blue"`
	Winner      int64  `json:"winner"`
	BetRed      *int64 `json:"bet_red"`
	BetBlue     *int64 `json:"bet_blue"`
	Tier        string `json:"tier"`
	MatchFormat string `json:"match_format"`
	Date        string `json:"date"`
}

// StatsInfo is the aggregate record block of a fighter
type StatsInfo struct {
	TotalMatches int     `json:"total_matches"`
	WinRate      float64 `json:"win_rate"`
}

// NewSaltyBoyClient creates a new SaltyBoy API client
func NewSaltyBoyClient(httpClient *RateLimitedHTTPClient, cfg config.SaltyBoyConfig, logger *logrus.Logger) *SaltyBoyClient {
	return &SaltyBoyClient{
		httpClient:      httpClient,
		baseURL:         strings.TrimRight(cfg.APIURL, "/"),
		balanceURL:      cfg.BalanceURL,
		sessionCookie:   cfg.SessionCookie,
		defaultBankroll: cfg.DefaultBankroll,
		logger:          logger.WithField("source", saltyBoySourceName),
	}
}

// NewSaltyBoyClientFromConfig wires the rate-limited transport from configuration
func NewSaltyBoyClientFromConfig(cfg config.SaltyBoyConfig, logger *logrus.Logger) *SaltyBoyClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.RetryAttempts
	httpCfg.RateLimit = cfg.RateLimit

	return NewSaltyBoyClient(NewRateLimitedHTTPClient(httpCfg, logger), cfg, logger)
}

// Name returns the name of the data source
func (c *SaltyBoyClient) Name() string {
	return saltyBoySourceName
}

// Close releases idle connections
func (c *SaltyBoyClient) Close() error {
	return c.httpClient.Close()
}

// FetchCurrentMatch retrieves and validates the open contest
func (c *SaltyBoyClient) FetchCurrentMatch(ctx context.Context) (*models.DecisionInput, error) {
	resp, err := c.httpClient.Get(ctx, c.baseURL+currentMatchInfoPath)
	if err != nil {
		return nil, NewDataSourceError(saltyBoySourceName, ErrCodeNetworkError, "failed to fetch current match", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var info CurrentMatchInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, NewDataSourceError(saltyBoySourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return c.convert(&info)
}

// FetchBalance scrapes the wallet balance, falling back to the configured
// default bankroll when no balance endpoint is configured
func (c *SaltyBoyClient) FetchBalance(ctx context.Context) (int64, error) {
	if c.balanceURL == "" {
		return c.defaultBankroll, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.balanceURL, nil)
	if err != nil {
		return 0, NewDataSourceError(saltyBoySourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: "PHPSESSID", Value: c.sessionCookie})
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return 0, NewDataSourceError(saltyBoySourceName, ErrCodeNetworkError, "failed to fetch balance", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return 0, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, NewDataSourceError(saltyBoySourceName, ErrCodeNetworkError, "failed to read balance page", err)
	}

	return parseBalance(body)
}

func parseBalance(page []byte) (int64, error) {
	m := balancePattern.FindSubmatch(page)
	if m == nil {
		return 0, NewDataSourceError(saltyBoySourceName, ErrCodeInvalidData, "balance not present on page", nil)
	}
	balance, err := strconv.ParseInt(strings.ReplaceAll(string(m[1]), ",", ""), 10, 64)
	if err != nil {
		return 0, NewDataSourceError(saltyBoySourceName, ErrCodeInvalidData, "malformed balance", err)
	}
	return balance, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(saltyBoySourceName, ErrCodeNotFound, "no open match", ErrNoOpenMatch)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(saltyBoySourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(saltyBoySourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
}

func (c *SaltyBoyClient) convert(info *CurrentMatchInfo) (*models.DecisionInput, error) {
	if info.FighterRed == "" && info.FighterBlue == "" {
		return nil, NewDataSourceError(saltyBoySourceName, ErrCodeNotFound, "no open match", ErrNoOpenMatch)
	}

	red, err := c.convertFighter(info.FighterRedInfo)
	if err != nil {
		return nil, NewDataSourceError(saltyBoySourceName, ErrCodeInvalidData, "invalid red fighter", err)
	}
	blue, err := c.convertFighter(info.FighterBlueInfo)
	if err != nil {
		return nil, NewDataSourceError(saltyBoySourceName, ErrCodeInvalidData, "invalid blue fighter", err)
	}

	return &models.DecisionInput{
		Red:      red,
		Blue:     blue,
		RedName:  info.FighterRed,
		BlueName: info.FighterBlue,
		Tier:     parseTier(info.Tier),
		Format:   models.MatchFormat(info.MatchFormat),
	}, nil
}

// convertFighter returns nil for a fighter the API has no record of.
// A malformed historical match fails the whole snapshot with ErrInvalidMatch.
func (c *SaltyBoyClient) convertFighter(fi *FighterInfo) (*models.Fighter, error) {
	if fi == nil || fi.ID == 0 {
		return nil, nil
	}

	matches := make([]*models.Match, 0, len(fi.Matches))
	for _, mi := range fi.Matches {
		m, err := convertMatch(mi)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"fighter_id": fi.ID,
				"match_id":   mi.ID,
			}).Warn("Rejecting fighter with malformed historical match")
			return nil, err
		}
		matches = append(matches, m)
	}

	var stats models.FighterStats
	if fi.Stats != nil {
		stats = models.FighterStats{TotalMatches: fi.Stats.TotalMatches, WinRate: normaliseRate(fi.Stats.WinRate)}
	}

	return models.NewFighter(fi.ID, fi.Name, parseTier(fi.Tier), fi.Elo, fi.TierElo, stats, matches)
}

func convertMatch(mi MatchInfo) (*models.Match, error) {
	var date time.Time
	if mi.Date != "" {
		d, err := parseMatchDate(mi.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: match %d: %v", models.ErrInvalidMatch, mi.ID, err)
		}
		date = d
	}

	return models.NewMatch(
		mi.ID,
		mi.FighterRed,
		mi.FighterBlue,
		mi.Winner,
		valueOrZero(mi.BetRed),
		valueOrZero(mi.BetBlue),
		parseTier(mi.Tier),
		models.MatchFormat(mi.MatchFormat),
		date,
	)
}

func parseMatchDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range matchDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseTier(s string) models.Tier {
	switch t := models.Tier(strings.ToUpper(strings.TrimSpace(s))); t {
	case models.TierPotato, models.TierB, models.TierA, models.TierS, models.TierX:
		return t
	default:
		return models.TierUnknown
	}
}

// normaliseRate accepts win rates given either as a fraction or a percentage
func normaliseRate(r float64) float64 {
	if r > 1 {
		r /= 100
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// IsNoOpenMatch reports whether err means there is nothing to bet on yet
func IsNoOpenMatch(err error) bool {
	return errors.Is(err, ErrNoOpenMatch)
}
