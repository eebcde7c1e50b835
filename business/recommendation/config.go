package recommendation

import (
	"time"

	"smartshop/domain"
	"smartshop/pkg/config"
)

// Config carries every cardinality and weighting knob of the engine.
// The constants are cost/quality tradeoffs, not correctness requirements.
type Config struct {
	// CandidateUsers bounds how many other users are scanned for similarity.
	CandidateUsers int

	// MaxUserInteractions caps how much history is loaded per user.
	MaxUserInteractions int

	// SimilarUserCap is how many top similar users feed collaborative scores.
	SimilarUserCap int

	// SimilarInteractionCap caps the interactions fetched per similar user.
	SimilarInteractionCap int

	// ContentCandidateCap bounds the catalog scan for content scoring.
	ContentCandidateCap int

	// SimilarityThreshold discards candidates at or below this Jaccard value.
	SimilarityThreshold float64

	// PopularityWindow is the trailing range over which interactions count
	// as "trending".
	PopularityWindow time.Duration

	// BranchTimeout is the per-recommender deadline inside the fan-out.
	// A timed-out branch contributes an empty list, never an error.
	BranchTimeout time.Duration

	// Blend weights: each algorithm's presence adds its weight to a
	// product's combined score.
	CollaborativeWeight float64
	ContentWeight       float64
	PopularityWeight    float64
}

const (
	defaultCandidateUsers        = 100
	defaultMaxUserInteractions   = 100
	defaultSimilarUserCap        = 10
	defaultSimilarInteractionCap = 50
	defaultContentCandidateCap   = 500
	defaultSimilarityThreshold   = 0.1
	defaultPopularityWindowDays  = 30
	defaultBranchTimeout         = 5 * time.Second

	defaultCollaborativeWeight = 0.4
	defaultContentWeight       = 0.4
	defaultPopularityWeight    = 0.2
)

func DefaultConfig() Config {
	return Config{
		CandidateUsers:        defaultCandidateUsers,
		MaxUserInteractions:   defaultMaxUserInteractions,
		SimilarUserCap:        defaultSimilarUserCap,
		SimilarInteractionCap: defaultSimilarInteractionCap,
		ContentCandidateCap:   defaultContentCandidateCap,
		SimilarityThreshold:   defaultSimilarityThreshold,
		PopularityWindow:      defaultPopularityWindowDays * 24 * time.Hour,
		BranchTimeout:         defaultBranchTimeout,

		CollaborativeWeight: defaultCollaborativeWeight,
		ContentWeight:       defaultContentWeight,
		PopularityWeight:    defaultPopularityWeight,
	}
}

// ConfigFromEnv overlays values from the application config onto the
// defaults. Zero values keep the default.
func ConfigFromEnv(rc config.RecommenderConfig) Config {
	cfg := DefaultConfig()

	if rc.CandidateUsers > 0 {
		cfg.CandidateUsers = rc.CandidateUsers
	}
	if rc.MaxUserInteractions > 0 {
		cfg.MaxUserInteractions = rc.MaxUserInteractions
	}
	if rc.SimilarUserCap > 0 {
		cfg.SimilarUserCap = rc.SimilarUserCap
	}
	if rc.SimilarInteractionCap > 0 {
		cfg.SimilarInteractionCap = rc.SimilarInteractionCap
	}
	if rc.ContentCandidateCap > 0 {
		cfg.ContentCandidateCap = rc.ContentCandidateCap
	}
	if rc.PopularityWindowDays > 0 {
		cfg.PopularityWindow = time.Duration(rc.PopularityWindowDays) * 24 * time.Hour
	}
	if rc.BranchTimeout > 0 {
		cfg.BranchTimeout = rc.BranchTimeout
	}

	return cfg
}

// Interaction weighting for collaborative scoring and profile building.
// Popularity uses its own scale below; the two are intentionally distinct
// signal weightings, do not merge them.
var collaborativeTypeWeights = map[string]float64{
	domain.InteractionPurchase: 5,
	domain.InteractionLike:     4,
	domain.InteractionCart:     3,
	domain.InteractionView:     1,
}

var popularityTypeWeights = map[string]float64{
	domain.InteractionPurchase: 5,
	domain.InteractionLike:     3,
	domain.InteractionCart:     2,
	domain.InteractionView:     1,
}

func interactionScore(interactionType string) float64 {
	if w, ok := collaborativeTypeWeights[interactionType]; ok {
		return w
	}
	return 1
}

// PopularityWeights returns a copy of the popularity scale for the
// aggregation query.
func PopularityWeights() map[string]float64 {
	out := make(map[string]float64, len(popularityTypeWeights))
	for k, v := range popularityTypeWeights {
		out[k] = v
	}
	return out
}
