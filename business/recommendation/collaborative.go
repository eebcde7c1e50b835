package recommendation

import (
	"context"
	"sort"

	"smartshop/domain"
	"smartshop/pkg/logger"
)

// signalTypes are the interaction types that carry intent for collaborative
// scoring. Views are excluded here to keep the signal clean.
var signalTypes = []string{
	domain.InteractionLike,
	domain.InteractionPurchase,
	domain.InteractionCart,
}

// collaborativeRecommendations accumulates similarity-weighted scores from
// users with overlapping taste. Store failures degrade to an empty list.
func (s *RecommendationService) collaborativeRecommendations(
	ctx context.Context,
	userID uint,
	interactions []domain.Interaction,
	interactedIDs []uint64,
	limit int,
) []domain.RecommendationItem {

	similarUsers := s.findSimilarUsers(ctx, userID, interactions)
	if len(similarUsers) == 0 {
		return nil
	}

	interacted := idSet(interactedIDs)
	scores := make(map[uint64]float64)

	for _, similar := range similarUsers {
		theirs, err := s.interactionRepo.FindByUserWithTypes(ctx, similar.UserID, signalTypes, s.cfg.SimilarInteractionCap)
		if err != nil {
			logger.Debug("skipping similar user after store error",
				"user_id", similar.UserID, "error", err)
			continue
		}

		for _, in := range theirs {
			if _, ok := interacted[in.ProductID]; ok {
				continue
			}
			scores[in.ProductID] += interactionScore(in.Type) * similar.Similarity
		}
	}

	if len(scores) == 0 {
		return nil
	}

	ranked := rankScores(scores)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return s.hydrate(ctx, ranked,
		domain.AlgorithmCollaborative,
		"users with similar preferences also liked this")
}

type scoredProduct struct {
	productID uint64
	score     float64
}

// rankScores turns an accumulator map into a deterministic ranking:
// score descending, product id ascending on equal scores.
func rankScores(scores map[uint64]float64) []scoredProduct {
	ranked := make([]scoredProduct, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, scoredProduct{productID: id, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].productID < ranked[j].productID
	})

	return ranked
}

// hydrate resolves ranked product ids into full recommendation items,
// keeping the ranking order. Products missing from the catalog are dropped.
func (s *RecommendationService) hydrate(ctx context.Context, ranked []scoredProduct, algorithm, explanation string) []domain.RecommendationItem {
	if len(ranked) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.productID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to hydrate products", "algorithm", algorithm, "error", err)
		return nil
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.RecommendationItem, 0, len(ranked))
	for _, r := range ranked {
		product, ok := byID[r.productID]
		if !ok {
			continue
		}
		items = append(items, domain.RecommendationItem{
			Product:     product,
			Algorithm:   algorithm,
			Explanation: explanation,
			Score:       r.score,
		})
	}

	return items
}
