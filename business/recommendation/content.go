package recommendation

import (
	"context"
	"math"
	"sort"

	"smartshop/domain"
	"smartshop/pkg/logger"
)

// Content score term weights. Terms with no usable history contribute 0,
// they are not renormalized, so the achievable total shrinks for users
// without price or rating history.
const (
	categoryTermWeight = 0.4
	priceTermWeight    = 0.2
	ratingTermWeight   = 0.3
	qualityTermWeight  = 0.1
)

// contentRecommendations scores un-interacted catalog candidates against the
// user's derived preference profile. Store failures degrade to an empty list.
func (s *RecommendationService) contentRecommendations(
	ctx context.Context,
	interactions []domain.Interaction,
	interactedIDs []uint64,
	limit int,
) []domain.RecommendationItem {

	profile := s.buildUserProfile(ctx, interactions)

	candidates, err := s.productRepo.FindExcluding(ctx, interactedIDs, s.cfg.ContentCandidateCap)
	if err != nil {
		logger.Error("failed to load content candidates", "error", err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	type scoredCandidate struct {
		product domain.Product
		score   float64
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, scoredCandidate{
			product: candidate,
			score:   contentScore(profile, candidate),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].product.ID < scored[j].product.ID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	items := make([]domain.RecommendationItem, 0, len(scored))
	for _, sc := range scored {
		items = append(items, domain.RecommendationItem{
			Product:     sc.product,
			Algorithm:   domain.AlgorithmContent,
			Explanation: "matches your interests based on past interactions",
			Score:       sc.score,
		})
	}

	return items
}

// contentScore rates one candidate against the profile:
// category affinity, proximity to the user's average price and rating, and
// the candidate's own quality.
func contentScore(profile domain.UserProfile, candidate domain.Product) float64 {
	score := 0.0

	maxCategory := 1.0
	for _, v := range profile.CategoryScores {
		if v > maxCategory {
			maxCategory = v
		}
	}
	score += categoryTermWeight * (profile.CategoryScores[candidate.Category] / maxCategory)

	if profile.AvgPrice > 0 {
		priceDiff := math.Abs(candidate.Price - profile.AvgPrice)
		score += priceTermWeight * math.Max(0, 1-priceDiff/profile.AvgPrice)
	}

	if profile.AvgRating > 0 {
		ratingDiff := math.Abs(candidate.Rating - profile.AvgRating)
		score += ratingTermWeight * math.Max(0, 1-ratingDiff/5)
	}

	score += qualityTermWeight * (candidate.Rating / 5)

	return score
}
