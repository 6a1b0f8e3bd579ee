package bot

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sodium-tycoon/internal/config"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

var (
	half = decimal.NewFromFloat(0.5)
	two  = decimal.NewFromInt(2)
)

// RiskMetrics summarises the stakes sized since start
type RiskMetrics struct {
	LastStake    int64     `json:"last_stake"`
	LastBankroll int64     `json:"last_bankroll"`
	TotalStaked  int64     `json:"total_staked"`
	StakesSized  int       `json:"stakes_sized"`
	MinimumBets  int       `json:"minimum_bets"`
	LastUpdate   time.Time `json:"last_update"`
}

// RiskManager converts a confidence into a bounded whole-unit stake
type RiskManager struct {
	config  *config.StakingConfig
	metrics RiskMetrics
	mu      sync.RWMutex
	logger  *logrus.Logger
}

// NewRiskManager creates a new risk manager
func NewRiskManager(cfg *config.StakingConfig, logger *logrus.Logger) *RiskManager {
	return &RiskManager{
		config: cfg,
		logger: logger,
	}
}

// CalculateStake sizes a wager. A nil confidence, a confidence at or below
// 0.5 and the safest tiers all receive the minimum stake. The result never
// exceeds the bankroll or the whale cap and is zero when the bankroll is empty.
func (rm *RiskManager) CalculateStake(confidence *float64, bankroll int64, tier models.Tier) int64 {
	if bankroll <= 0 {
		rm.record(0, bankroll, true)
		return 0
	}

	stake := rm.config.MinStake
	minimum := true

	if confidence != nil && *confidence > 0.5 {
		effective := *confidence
		if effective > rm.config.ConfidenceCeiling {
			effective = rm.config.ConfidenceCeiling
		}

		effectiveBankroll := rm.effectiveBankroll(bankroll)
		fraction := rm.StakeFraction(bankroll)
		edge := decimal.NewFromFloat(effective).Sub(half).Mul(two)

		sized := decimal.NewFromInt(effectiveBankroll).Mul(fraction).Mul(edge).Floor().IntPart()
		if sized > stake {
			stake = sized
			minimum = false
		}

		rm.logger.WithFields(logrus.Fields{
			"confidence":         *confidence,
			"effective":          effective,
			"effective_bankroll": effectiveBankroll,
			"fraction":           fraction.String(),
			"sized":              sized,
		}).Debug("Stake sized from confidence")
	}

	if stake > rm.config.MaxStake {
		rm.logger.WithFields(logrus.Fields{
			"calculated_stake": stake,
			"max_stake":        rm.config.MaxStake,
		}).Debug("Stake capped at maximum")
		stake = rm.config.MaxStake
	}

	if limit, ok := rm.config.TierCap(string(tier)); ok && stake > limit {
		rm.logger.WithFields(logrus.Fields{
			"calculated_stake": stake,
			"tier":             tier,
			"tier_cap":         limit,
		}).Debug("Stake capped for tier")
		stake = limit
	}

	if stake > bankroll {
		stake = bankroll
	}
	if stake < 0 {
		stake = 0
	}

	rm.record(stake, bankroll, minimum)
	return stake
}

// StakeFraction returns the share of the effective bankroll staked at full
// confidence. It tapers from max_fraction toward min_fraction as the bankroll grows.
func (rm *RiskManager) StakeFraction(bankroll int64) decimal.Decimal {
	upper := decimal.NewFromFloat(rm.config.MaxFraction)
	lower := decimal.NewFromFloat(rm.config.MinFraction)
	taper := decimal.NewFromInt(rm.config.TaperBankroll)
	b := decimal.NewFromInt(rm.effectiveBankroll(bankroll))

	return lower.Add(upper.Sub(lower).Mul(taper).Div(taper.Add(b)))
}

func (rm *RiskManager) effectiveBankroll(bankroll int64) int64 {
	if bankroll < 0 {
		return 0
	}
	if bankroll > rm.config.EffectiveBankrollCap {
		return rm.config.EffectiveBankrollCap
	}
	return bankroll
}

func (rm *RiskManager) record(stake, bankroll int64, minimum bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.metrics.LastStake = stake
	rm.metrics.LastBankroll = bankroll
	rm.metrics.TotalStaked += stake
	rm.metrics.StakesSized++
	if minimum {
		rm.metrics.MinimumBets++
	}
	rm.metrics.LastUpdate = time.Now()
}

// MinimumStake is the flat unit used by the fail-safe path
func (rm *RiskManager) MinimumStake(bankroll int64) int64 {
	return rm.CalculateStake(nil, bankroll, "")
}

// GetRiskMetrics returns current risk metrics for monitoring
func (rm *RiskManager) GetRiskMetrics() RiskMetrics {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return rm.metrics
}
