package recommendation

import (
	"context"
	"time"

	"smartshop/domain"
	"smartshop/pkg/logger"
)

// popularProducts ranks products by weighted interaction volume inside the
// trailing popularity window. If the aggregation fails for any reason, the
// rating-sorted catalog serves as the safety net, so this path only errors
// when the catalog itself is unreadable.
func (s *RecommendationService) popularProducts(ctx context.Context, limit int, excludeIDs []uint64) ([]domain.RecommendationItem, error) {
	since := time.Now().Add(-s.cfg.PopularityWindow)

	rows, err := s.interactionRepo.AggregateByProduct(ctx, since, excludeIDs, PopularityWeights(), limit)
	if err != nil {
		logger.Error("popularity aggregation failed, serving rating fallback", "error", err)
		return s.ratingFallback(ctx, limit, excludeIDs)
	}

	ranked := make([]scoredProduct, 0, len(rows))
	for _, row := range rows {
		ranked = append(ranked, scoredProduct{productID: row.ProductID, score: row.TotalScore})
	}

	items := s.hydrate(ctx, ranked,
		domain.AlgorithmPopularity,
		"popular and trending product")
	if len(items) == 0 {
		// zero rows on a fresh system, or hydration failed outright; the
		// rating fallback lets the catalog decide whether anything is served
		return s.ratingFallback(ctx, limit, excludeIDs)
	}

	return items, nil
}

// ratingFallback is the ultimate safety net: the catalog sorted by rating.
// Used for interaction-less systems and for upstream aggregation failures
// alike, so an empty result can only mean an empty catalog.
func (s *RecommendationService) ratingFallback(ctx context.Context, limit int, excludeIDs []uint64) ([]domain.RecommendationItem, error) {
	products, err := s.productRepo.FindTopRated(ctx, limit+len(excludeIDs))
	if err != nil {
		return nil, err
	}

	excluded := idSet(excludeIDs)
	items := make([]domain.RecommendationItem, 0, limit)
	for _, p := range products {
		if _, ok := excluded[p.ID]; ok {
			continue
		}
		items = append(items, domain.RecommendationItem{
			Product:     p,
			Algorithm:   domain.AlgorithmRating,
			Explanation: "highly rated product",
		})
		if len(items) == limit {
			break
		}
	}

	return items, nil
}
