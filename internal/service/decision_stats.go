package service

import (
	"fmt"
	"sync"
	"time"
)

// DecisionStats tracks what the decision loop has done since start
type DecisionStats struct {
	mu             sync.RWMutex
	StartTime      time.Time
	Decisions      int
	FailSafes      int
	ForcedMinimum  int
	FetchErrors    int
	IdlePolls      int
	Results        int
	LastDecisionAt time.Time
}

// NewDecisionStats creates a new stats tracker
func NewDecisionStats() *DecisionStats {
	return &DecisionStats{
		StartTime: time.Now(),
	}
}

// Reset resets all counters
func (s *DecisionStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.StartTime = time.Now()
	s.Decisions = 0
	s.FailSafes = 0
	s.ForcedMinimum = 0
	s.FetchErrors = 0
	s.IdlePolls = 0
	s.Results = 0
	s.LastDecisionAt = time.Time{}
}

// RecordDecision counts a produced wager
func (s *DecisionStats) RecordDecision(at time.Time, degraded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Decisions++
	if degraded {
		s.FailSafes++
	}
	s.LastDecisionAt = at
}

// RecordForcedMinimum counts a wager cut to the minimum by the circuit breaker
func (s *DecisionStats) RecordForcedMinimum() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ForcedMinimum++
}

// RecordFetchError increments the fetch error count
func (s *DecisionStats) RecordFetchError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FetchErrors++
}

// RecordIdlePoll counts a poll that found nothing to decide
func (s *DecisionStats) RecordIdlePoll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IdlePolls++
}

// RecordResult counts a recorded match result
func (s *DecisionStats) RecordResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Results++
}

// StatsSnapshot is a point-in-time copy of DecisionStats
type StatsSnapshot struct {
	Uptime         time.Duration `json:"uptime"`
	Decisions      int           `json:"decisions"`
	FailSafes      int           `json:"fail_safes"`
	ForcedMinimum  int           `json:"forced_minimum"`
	FetchErrors    int           `json:"fetch_errors"`
	IdlePolls      int           `json:"idle_polls"`
	Results        int           `json:"results"`
	LastDecisionAt time.Time     `json:"last_decision_at"`
}

// Snapshot returns a copy of the counters
func (s *DecisionStats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatsSnapshot{
		Uptime:         time.Since(s.StartTime),
		Decisions:      s.Decisions,
		FailSafes:      s.FailSafes,
		ForcedMinimum:  s.ForcedMinimum,
		FetchErrors:    s.FetchErrors,
		IdlePolls:      s.IdlePolls,
		Results:        s.Results,
		LastDecisionAt: s.LastDecisionAt,
	}
}

// String returns a formatted string representation of the counters
func (s *DecisionStats) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	failSafeRate := float64(0)
	if s.Decisions > 0 {
		failSafeRate = float64(s.FailSafes) / float64(s.Decisions) * 100
	}

	return fmt.Sprintf(
		"DecisionStats{Decisions=%d, FailSafes=%d (%.1f%%), ForcedMinimum=%d, FetchErrors=%d, IdlePolls=%d, Results=%d}",
		s.Decisions,
		s.FailSafes,
		failSafeRate,
		s.ForcedMinimum,
		s.FetchErrors,
		s.IdlePolls,
		s.Results,
	)
}
