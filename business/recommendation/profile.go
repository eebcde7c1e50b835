package recommendation

import (
	"context"

	"smartshop/domain"
	"smartshop/pkg/logger"
)

// buildUserProfile derives a preference summary from one user's own
// interactions. Pure with respect to its inputs: the same interactions and
// catalog rows always produce the same profile.
//
// Each distinct product contributes once, weighted by the first interaction
// recorded against it; price and rating averages run over matched products.
func (s *RecommendationService) buildUserProfile(ctx context.Context, interactions []domain.Interaction) domain.UserProfile {
	profile := domain.UserProfile{
		CategoryScores: make(map[string]float64),
		PreferredTypes: make(map[string]int),
	}

	ids := interactedProductIDs(interactions)
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to load products for profile", "error", err)
		products = nil
	}

	firstInteraction := make(map[uint64]domain.Interaction, len(interactions))
	for _, in := range interactions {
		if _, ok := firstInteraction[in.ProductID]; !ok {
			firstInteraction[in.ProductID] = in
		}
	}

	var totalPrice, totalRating float64
	matched := 0

	for _, product := range products {
		in, ok := firstInteraction[product.ID]
		if !ok {
			continue
		}

		profile.CategoryScores[product.Category] += interactionScore(in.Type)

		totalPrice += product.Price
		totalRating += product.Rating
		matched++
	}

	for _, in := range interactions {
		profile.PreferredTypes[in.Type]++
	}

	if matched > 0 {
		profile.AvgPrice = totalPrice / float64(matched)
		profile.AvgRating = totalRating / float64(matched)
	}

	return profile
}
