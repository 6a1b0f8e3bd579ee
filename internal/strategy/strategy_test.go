package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sodium-tycoon/internal/config"
	"github.com/yourusername/sodium-tycoon/internal/models"
)

func ptr(v float64) *float64 { return &v }

func ratingsOnly(red, blue float64) Inputs {
	return Inputs{
		Red:  Ratings{Elo: red, TierElo: red},
		Blue: Ratings{Elo: blue, TierElo: blue},
	}
}

func TestRatingProbability(t *testing.T) {
	assert.InDelta(t, 0.5, RatingProbability(1500, 1500), 1e-12)
	assert.InDelta(t, 0.6401, RatingProbability(1600, 1500), 1e-4)
	assert.InDelta(t, 1.0, RatingProbability(1600, 1500)+RatingProbability(1500, 1600), 1e-12)
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.InDelta(t, 1.0, Sigmoid(1000), 1e-12)
	assert.InDelta(t, 0.0, Sigmoid(-1000), 1e-12)
	assert.False(t, math.IsNaN(Sigmoid(-1e6)))
}

func TestWeightedBlendRatingOnly(t *testing.T) {
	s := NewWeightedBlendStrategy()

	res := s.ComputeProbability(ratingsOnly(1600, 1500))

	expected := 1 / (1 + math.Pow(10, -100.0/400.0))
	assert.Equal(t, models.SideRed, res.Side)
	assert.InDelta(t, expected, res.Confidence, 1e-9)
	assert.InDelta(t, 0.64, res.Confidence, 0.001)
	assert.InDelta(t, 0.0, res.Edge, 1e-12)
}

func TestWeightedBlendHeadToHeadShiftsAboveBaseline(t *testing.T) {
	s := NewWeightedBlendStrategy()
	baseline := s.ComputeProbability(ratingsOnly(1600, 1500))

	in := ratingsOnly(1600, 1500)
	in.Features = models.FeatureSet{H2HRedWins: 4, H2HTotal: 5}
	res := s.ComputeProbability(in)

	expected := (baseline.Probability*2 + 0.8*5) / 7
	assert.Equal(t, models.SideRed, res.Side)
	assert.InDelta(t, expected, res.Probability, 1e-9)
	assert.Greater(t, res.Confidence, baseline.Confidence)
}

func TestWeightedBlendSymmetry(t *testing.T) {
	s := NewWeightedBlendStrategy()

	forward := ratingsOnly(1650, 1480)
	forward.Features = models.FeatureSet{
		H2HRedWins: 3, H2HTotal: 4,
		ComparativeRedWon: 2, ComparativeRedLost: 3, ComparativeTotal: 5, ComparativeAvailable: true,
	}
	swapped := ratingsOnly(1480, 1650)
	swapped.Features = models.FeatureSet{
		H2HRedWins: 1, H2HTotal: 4,
		ComparativeRedWon: 3, ComparativeRedLost: 2, ComparativeTotal: 5, ComparativeAvailable: true,
	}

	a := s.ComputeProbability(forward)
	b := s.ComputeProbability(swapped)

	assert.InDelta(t, a.Probability, 1-b.Probability, 1e-9)
	assert.NotEqual(t, a.Side, b.Side)
	assert.InDelta(t, a.Confidence, b.Confidence, 1e-9)
}

func TestRatingMonotonicity(t *testing.T) {
	features := models.FeatureSet{H2HRedWins: 1, H2HTotal: 3}

	for _, s := range []Strategy{NewWeightedBlendStrategy(), NewLogisticStrategy(DefaultCoefficients())} {
		t.Run(s.Name(), func(t *testing.T) {
			prev := -1.0
			for red := 1300.0; red <= 1800; red += 50 {
				in := ratingsOnly(red, 1500)
				in.Features = features
				p := s.ComputeProbability(in).Probability
				assert.Greater(t, p, prev, "rating %v", red)
				prev = p
			}
		})
	}
}

func TestReliabilityGate(t *testing.T) {
	for _, s := range []Strategy{NewWeightedBlendStrategy(), NewLogisticStrategy(DefaultCoefficients())} {
		t.Run(s.Name(), func(t *testing.T) {
			base := ratingsOnly(1550, 1500)
			want := s.ComputeProbability(base)

			for wins := 0; wins <= 2; wins++ {
				in := base
				in.Features = models.FeatureSet{
					H2HRedWins: wins, H2HTotal: 2,
					ComparativeRedWon: wins, ComparativeRedLost: 2 - wins, ComparativeTotal: 2, ComparativeAvailable: true,
				}
				got := s.ComputeProbability(in)
				assert.InDelta(t, want.Probability, got.Probability, 1e-12)
				assert.InDelta(t, want.Confidence, got.Confidence, 1e-12)
			}
		})
	}
}

func TestConfidenceAlwaysClamped(t *testing.T) {
	aggressive := NewLogisticStrategy(Coefficients{TierElo: 0.05, H2H: 10, Comp: 10})
	aggressive.EdgeMultiplier = 50

	strategies := []Strategy{NewWeightedBlendStrategy(), NewLogisticStrategy(DefaultCoefficients()), aggressive}
	gaps := []float64{-2000, -400, -50, 0, 50, 400, 2000}

	for _, s := range strategies {
		for _, gap := range gaps {
			in := ratingsOnly(1500+gap, 1500)
			in.Features = models.FeatureSet{H2HRedWins: 5, H2HTotal: 5}
			in.RedCalibration = ptr(0.9)
			in.BlueCalibration = ptr(0.2)

			res := s.ComputeProbability(in)
			assert.GreaterOrEqual(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)
			assert.GreaterOrEqual(t, res.Probability, 0.0)
			assert.LessOrEqual(t, res.Probability, 1.0)
		}
	}
}

func TestCalibrationPenalty(t *testing.T) {
	s := NewWeightedBlendStrategy()

	plain := s.ComputeProbability(ratingsOnly(1600, 1500))

	in := ratingsOnly(1600, 1500)
	in.RedCalibration = ptr(0.5)
	in.BlueCalibration = ptr(0.1)
	penalised := s.ComputeProbability(in)

	assert.InDelta(t, plain.Confidence*0.5, penalised.Confidence, 1e-12)
	assert.InDelta(t, plain.Probability, penalised.Probability, 1e-12)

	// only the chosen side's index applies
	in.RedCalibration = nil
	assert.InDelta(t, plain.Confidence, s.ComputeProbability(in).Confidence, 1e-12)
}

func TestLogisticScore(t *testing.T) {
	s := NewLogisticStrategy(DefaultCoefficients())

	in := ratingsOnly(1600, 1500)
	in.Features = models.FeatureSet{
		H2HRedWins: 4, H2HTotal: 5,
		ComparativeRedWon: 3, ComparativeRedLost: 1, ComparativeTotal: 4, ComparativeAvailable: true,
	}

	want := -0.02 + 0.0055*100 + 1.5*(0.8-0.5) + 0.16*(0.75-0.5)
	assert.InDelta(t, want, s.Score(in), 1e-12)
}

func TestLogisticEdgeThenCalibration(t *testing.T) {
	s := NewLogisticStrategy(DefaultCoefficients())

	in := ratingsOnly(1600, 1500)
	in.Features = models.FeatureSet{H2HRedWins: 4, H2HTotal: 5}
	in.RedCalibration = ptr(0.8)

	res := s.ComputeProbability(in)

	model := Sigmoid(s.Score(in))
	crowd := RatingProbability(1600, 1500)
	edge := model - crowd
	want := model * (1 + edge*DefaultEdgeMultiplier) * 0.8

	assert.Equal(t, models.SideRed, res.Side)
	assert.InDelta(t, edge, res.Edge, 1e-12)
	assert.InDelta(t, crowd, res.CrowdProbability, 1e-12)
	assert.InDelta(t, want, res.Confidence, 1e-12)
}

func TestLogisticWithoutEdgeIsPlainSigmoid(t *testing.T) {
	s := NewLogisticStrategy(DefaultCoefficients())
	s.EdgeMultiplier = 0

	in := ratingsOnly(1450, 1500)
	res := s.ComputeProbability(in)

	assert.Equal(t, models.SideBlue, res.Side)
	assert.InDelta(t, 1-Sigmoid(s.Score(in)), res.Confidence, 1e-12)
}

func TestLogisticNegativeEdgeLowersConfidence(t *testing.T) {
	s := NewLogisticStrategy(Coefficients{TierElo: 0.001})

	res := s.ComputeProbability(ratingsOnly(1700, 1500))

	assert.Equal(t, models.SideRed, res.Side)
	assert.Less(t, res.Edge, 0.0)
	assert.Less(t, res.Confidence, Sigmoid(0.2))
}

func TestResultDecision(t *testing.T) {
	res := Result{Side: models.SideBlue, Confidence: 0.7, Score: -0.4}

	d := res.Decision(LogisticName)

	require.NotNil(t, d.Confidence)
	assert.Equal(t, 0.7, *d.Confidence)
	assert.Equal(t, models.SideBlue, d.Side)
	assert.Equal(t, LogisticName, d.Strategy)
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.EngineConfig{
		Strategy:       LogisticName,
		Intercept:      0.1,
		TierEloWeight:  0.004,
		H2HWeight:      1.2,
		CompWeight:     0.3,
		MinMatches:     4,
		EdgeMultiplier: 2,
	}

	s, err := New(cfg)
	require.NoError(t, err)
	logistic, ok := s.(*LogisticStrategy)
	require.True(t, ok)
	assert.Equal(t, Coefficients{Intercept: 0.1, TierElo: 0.004, H2H: 1.2, Comp: 0.3}, logistic.Coefficients)
	assert.Equal(t, 4, logistic.MinMatches)
	assert.Equal(t, 2.0, logistic.EdgeMultiplier)

	cfg.Strategy = WeightedBlendName
	cfg.BlendRatingWeight, cfg.BlendH2HWeight, cfg.BlendCompWeight = 1, 1, 1
	s, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, WeightedBlendName, Describe(s).Name)
	assert.Equal(t, 1.0, Describe(s).Parameters["h2h_weight"])

	cfg.Strategy = "coin_flip"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestUpdateRating(t *testing.T) {
	assert.Equal(t, 1516.0, UpdateRating(1500, 1500, true))
	assert.Equal(t, 1484.0, UpdateRating(1500, 1500, false))

	// An expected win moves the rating less than an upset.
	favourite := UpdateRating(1800, 1400, true) - 1800
	underdog := UpdateRating(1400, 1800, true) - 1400
	assert.Less(t, favourite, underdog)
	assert.Equal(t, 1397.0, UpdateRating(1400, 1800, false))
}
