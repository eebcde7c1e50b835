package recommendation

import (
	"sort"

	"smartshop/domain"
)

// combineRecommendations merges the three ranked lists under fixed presence
// weights. A product appearing in several lists sums their weights; the item
// data comes from whichever list saw it first.
func combineRecommendations(collaborative, content, popular []domain.RecommendationItem, limit int, cfg Config) []domain.RecommendationItem {
	combined := make(map[uint64]*domain.RecommendationItem)

	accumulate := func(items []domain.RecommendationItem, weight float64) {
		for _, item := range items {
			if existing, ok := combined[item.Product.ID]; ok {
				existing.CombinedScore += weight
				continue
			}
			seeded := item
			seeded.CombinedScore = weight
			combined[item.Product.ID] = &seeded
		}
	}

	accumulate(collaborative, cfg.CollaborativeWeight)
	accumulate(content, cfg.ContentWeight)
	accumulate(popular, cfg.PopularityWeight)

	out := make([]domain.RecommendationItem, 0, len(combined))
	for _, item := range combined {
		out = append(out, *item)
	}

	// combined score descending, product id ascending on ties so equal
	// scores rank reproducibly across runs
	sort.Slice(out, func(i, j int) bool {
		if out[i].CombinedScore != out[j].CombinedScore {
			return out[i].CombinedScore > out[j].CombinedScore
		}
		return out[i].Product.ID < out[j].Product.ID
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out
}
