package recommendation

import (
	"context"
	"sort"

	"smartshop/domain"
	"smartshop/pkg/logger"
)

// findSimilarUsers ranks other users by Jaccard similarity of their
// interacted-product-id sets against the target's. Candidates at or below
// the threshold are dropped; the top SimilarUserCap survive, similarity
// descending with the original candidate order preserved on ties.
func (s *RecommendationService) findSimilarUsers(ctx context.Context, userID uint, interactions []domain.Interaction) []domain.SimilarityScore {
	targetSet := idSet(interactedProductIDs(interactions))
	if len(targetSet) == 0 {
		return nil
	}

	candidateIDs, err := s.userRepo.FindIDsExcluding(ctx, userID, s.cfg.CandidateUsers)
	if err != nil {
		logger.Error("failed to list candidate users", "user_id", userID, "error", err)
		return nil
	}

	similarities := make([]domain.SimilarityScore, 0, len(candidateIDs))

	for _, candidateID := range candidateIDs {
		theirs, err := s.interactionRepo.FindByUser(ctx, candidateID, s.cfg.MaxUserInteractions)
		if err != nil {
			// one unreadable candidate must not sink the rest
			continue
		}

		theirSet := idSet(interactedProductIDs(theirs))
		if len(theirSet) == 0 {
			continue
		}

		sim := jaccard(targetSet, theirSet)
		if sim > s.cfg.SimilarityThreshold {
			similarities = append(similarities, domain.SimilarityScore{
				UserID:     candidateID,
				Similarity: sim,
			})
		}
	}

	sort.SliceStable(similarities, func(i, j int) bool {
		return similarities[i].Similarity > similarities[j].Similarity
	})

	if len(similarities) > s.cfg.SimilarUserCap {
		similarities = similarities[:s.cfg.SimilarUserCap]
	}

	return similarities
}

// jaccard computes |intersection| / |union| of two id sets.
// Result is always in [0,1].
func jaccard(a, b map[uint64]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
