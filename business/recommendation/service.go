package recommendation

import (
	"context"
	"fmt"
	"time"

	"smartshop/domain"
	"smartshop/pkg/logger"
	"smartshop/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// ---- Repository interfaces ----

type InteractionRepository interface {
	FindByUser(ctx context.Context, userID uint, limit int) ([]domain.Interaction, error)
	FindByUserWithTypes(ctx context.Context, userID uint, types []string, limit int) ([]domain.Interaction, error)
	AggregateByProduct(ctx context.Context, since time.Time, excludeIDs []uint64, weights map[string]float64, limit int) ([]domain.ProductScore, error)
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	FindExcluding(ctx context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error)
	FindTopRated(ctx context.Context, limit int) ([]domain.Product, error)
}

type UserRepository interface {
	FindIDsExcluding(ctx context.Context, userID uint, limit int) ([]uint, error)
}

// PopularCache caches the unfiltered popular-products list. Optional; a nil
// cache disables it. Errors are ignored, the cache is best-effort.
type PopularCache interface {
	GetPopular(ctx context.Context, limit int) ([]domain.RecommendationItem, error)
	SetPopular(ctx context.Context, limit int, items []domain.RecommendationItem) error
}

// ---- Service ----

// RecommendationService blends collaborative, content-based and popularity
// signals into one ranked product list. All store failures degrade to
// smaller or less personalized results; the only empty output is an empty
// catalog.
type RecommendationService struct {
	interactionRepo InteractionRepository
	productRepo     ProductRepository
	userRepo        UserRepository
	popularCache    PopularCache
	cfg             Config
}

func NewRecommendationService(
	interactionRepo InteractionRepository,
	productRepo ProductRepository,
	userRepo UserRepository,
	popularCache PopularCache,
	cfg Config,
) *RecommendationService {
	return &RecommendationService{
		interactionRepo: interactionRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
		popularCache:    popularCache,
		cfg:             cfg,
	}
}

// GenerateRecommendations produces up to limit ranked items for a user.
// Cold-start users (no history) get the popularity ranking directly.
func (s *RecommendationService) GenerateRecommendations(ctx context.Context, userID uint, limit int) ([]domain.RecommendationItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	tid := TraceIDFromContext(ctx)

	interactions, err := s.interactionRepo.FindByUser(ctx, userID, s.cfg.MaxUserInteractions)
	if err != nil {
		logger.Error("failed to load user interactions, falling back to popular",
			"trace_id", tid, "user_id", userID, "error", err)
		return s.GetPopularProducts(ctx, limit, nil)
	}

	if len(interactions) == 0 {
		metrics.RecommendColdStarts.Inc()
		logger.Debug("cold start user, serving popular products",
			"trace_id", tid, "user_id", userID)
		return s.GetPopularProducts(ctx, limit, nil)
	}

	interactedIDs := interactedProductIDs(interactions)

	collaborative, content, popular := s.fanOut(ctx, userID, interactions, interactedIDs, limit)

	blended := combineRecommendations(collaborative, content, popular, limit, s.cfg)

	logger.Debug("recommendations generated",
		"trace_id", tid,
		"user_id", userID,
		"collaborative", len(collaborative),
		"content", len(content),
		"popular", len(popular),
		"blended", len(blended),
	)

	return blended, nil
}

// fanOut runs the three recommenders concurrently and joins their results.
// Each branch owns its accumulator and isolates its own failure as an empty
// list, so one slow or broken branch never corrupts the siblings.
func (s *RecommendationService) fanOut(
	ctx context.Context,
	userID uint,
	interactions []domain.Interaction,
	interactedIDs []uint64,
	limit int,
) (collaborative, content, popular []domain.RecommendationItem) {

	g := new(errgroup.Group)

	g.Go(func() error {
		branchCtx, cancel := context.WithTimeout(ctx, s.cfg.BranchTimeout)
		defer cancel()
		collaborative = s.collaborativeRecommendations(branchCtx, userID, interactions, interactedIDs, limit)
		return nil
	})

	g.Go(func() error {
		branchCtx, cancel := context.WithTimeout(ctx, s.cfg.BranchTimeout)
		defer cancel()
		content = s.contentRecommendations(branchCtx, interactions, interactedIDs, limit)
		return nil
	})

	g.Go(func() error {
		branchCtx, cancel := context.WithTimeout(ctx, s.cfg.BranchTimeout)
		defer cancel()
		popular, _ = s.popularProducts(branchCtx, limit, interactedIDs)
		return nil
	})

	_ = g.Wait()

	metrics.RecommendItemsTotal.WithLabelValues(domain.AlgorithmCollaborative).Add(float64(len(collaborative)))
	metrics.RecommendItemsTotal.WithLabelValues(domain.AlgorithmContent).Add(float64(len(content)))
	metrics.RecommendItemsTotal.WithLabelValues(domain.AlgorithmPopularity).Add(float64(len(popular)))

	return collaborative, content, popular
}

// GetPopularProducts serves the trending list, consulting the cache when no
// exclusions apply.
func (s *RecommendationService) GetPopularProducts(ctx context.Context, limit int, excludeIDs []uint64) ([]domain.RecommendationItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	cacheable := s.popularCache != nil && len(excludeIDs) == 0

	if cacheable {
		if items, err := s.popularCache.GetPopular(ctx, limit); err == nil && items != nil {
			return items, nil
		}
	}

	items, err := s.popularProducts(ctx, limit, excludeIDs)
	if err != nil {
		return nil, err
	}

	if cacheable && len(items) > 0 {
		if err := s.popularCache.SetPopular(ctx, limit, items); err != nil {
			logger.Debug("failed to cache popular products", "error", err)
		}
	}

	return items, nil
}

// GetHistory returns a user's most recent interactions, newest first.
func (s *RecommendationService) GetHistory(ctx context.Context, userID uint, limit int) ([]domain.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}

	return s.interactionRepo.FindByUser(ctx, userID, limit)
}

// DebugRecommend exposes the intermediate state of a recommendation request:
// the similar users, the derived profile and the three per-algorithm lists.
func (s *RecommendationService) DebugRecommend(ctx context.Context, userID uint, limit int) (domain.DebugRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.DebugRecommendation{}, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	interactions, err := s.interactionRepo.FindByUser(ctx, userID, s.cfg.MaxUserInteractions)
	if err != nil {
		return domain.DebugRecommendation{}, fmt.Errorf("load interactions: %w", err)
	}

	if len(interactions) == 0 {
		popular, err := s.GetPopularProducts(ctx, limit, nil)
		if err != nil {
			return domain.DebugRecommendation{}, err
		}
		return domain.DebugRecommendation{
			Popularity: popular,
			Blended:    popular,
		}, nil
	}

	interactedIDs := interactedProductIDs(interactions)

	similar := s.findSimilarUsers(ctx, userID, interactions)
	profile := s.buildUserProfile(ctx, interactions)

	collaborative, content, popular := s.fanOut(ctx, userID, interactions, interactedIDs, limit)
	blended := combineRecommendations(collaborative, content, popular, limit, s.cfg)

	return domain.DebugRecommendation{
		Collaborative: collaborative,
		Content:       content,
		Popularity:    popular,
		Blended:       blended,
		Profile:       &profile,
		SimilarUsers:  similar,
	}, nil
}

// interactedProductIDs extracts the de-duplicated product-id list from a
// user's interactions, preserving first-seen order.
func interactedProductIDs(interactions []domain.Interaction) []uint64 {
	seen := make(map[uint64]struct{}, len(interactions))
	ids := make([]uint64, 0, len(interactions))
	for _, in := range interactions {
		if _, ok := seen[in.ProductID]; ok {
			continue
		}
		seen[in.ProductID] = struct{}{}
		ids = append(ids, in.ProductID)
	}
	return ids
}

func idSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
