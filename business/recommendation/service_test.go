//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"smartshop/domain"
)

// ---- fakes shared by the package tests ----

type fakeInteractionRepo struct {
	byUser    map[uint][]domain.Interaction
	byUserErr map[uint]error

	aggRows []domain.ProductScore
	aggErr  error

	lastSince   time.Time
	lastWeights map[string]float64
	lastExclude []uint64
}

func (f *fakeInteractionRepo) FindByUser(ctx context.Context, userID uint, limit int) ([]domain.Interaction, error) {
	if err := f.byUserErr[userID]; err != nil {
		return nil, err
	}
	ins := f.byUser[userID]
	if len(ins) > limit {
		ins = ins[:limit]
	}
	return ins, nil
}

func (f *fakeInteractionRepo) FindByUserWithTypes(ctx context.Context, userID uint, types []string, limit int) ([]domain.Interaction, error) {
	if err := f.byUserErr[userID]; err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	out := make([]domain.Interaction, 0)
	for _, in := range f.byUser[userID] {
		if _, ok := allowed[in.Type]; ok {
			out = append(out, in)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInteractionRepo) AggregateByProduct(ctx context.Context, since time.Time, excludeIDs []uint64, weights map[string]float64, limit int) ([]domain.ProductScore, error) {
	f.lastSince = since
	f.lastWeights = weights
	f.lastExclude = excludeIDs
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	excluded := make(map[uint64]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	out := make([]domain.ProductScore, 0, len(f.aggRows))
	for _, row := range f.aggRows {
		if _, ok := excluded[row.ProductID]; ok {
			continue
		}
		out = append(out, row)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[uint64]domain.Product

	findByIDsErr error
	excludingErr error
	topRatedErr  error
}

func (f *fakeProductRepo) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if f.findByIDsErr != nil {
		return nil, f.findByIDsErr
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FindExcluding(ctx context.Context, excludeIDs []uint64, limit int) ([]domain.Product, error) {
	if f.excludingErr != nil {
		return nil, f.excludingErr
	}
	excluded := make(map[uint64]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		if _, ok := excluded[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProductRepo) FindTopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.topRatedErr != nil {
		return nil, f.topRatedErr
	}
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUserRepo struct {
	ids []uint
	err error
}

func (f *fakeUserRepo) FindIDsExcluding(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]uint, 0, len(f.ids))
	for _, id := range f.ids {
		if id != userID {
			out = append(out, id)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCache struct {
	stored []domain.RecommendationItem
	getErr error

	gets int
	sets int
}

func (f *fakeCache) GetPopular(ctx context.Context, limit int) ([]domain.RecommendationItem, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored, nil
}

func (f *fakeCache) SetPopular(ctx context.Context, limit int, items []domain.RecommendationItem) error {
	f.sets++
	f.stored = items
	return nil
}

func newTestService(ir *fakeInteractionRepo, pr *fakeProductRepo, ur *fakeUserRepo, cache PopularCache) *RecommendationService {
	if ir.byUser == nil {
		ir.byUser = map[uint][]domain.Interaction{}
	}
	if ir.byUserErr == nil {
		ir.byUserErr = map[uint]error{}
	}
	if pr.products == nil {
		pr.products = map[uint64]domain.Product{}
	}
	return NewRecommendationService(ir, pr, ur, cache, DefaultConfig())
}

func interaction(userID uint, productID uint64, typ string) domain.Interaction {
	return domain.Interaction{UserID: userID, ProductID: productID, Type: typ, CreatedAt: time.Now()}
}

// ---- service behavior ----

func TestGenerateRecommendationsColdStartServesPopular(t *testing.T) {
	ir := &fakeInteractionRepo{
		aggRows: []domain.ProductScore{
			{ProductID: 2, TotalScore: 9, Count: 3},
			{ProductID: 1, TotalScore: 5, Count: 2},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Name: "A", Category: "Books", Rating: 4},
		2: {ID: 2, Name: "B", Category: "Electronics", Rating: 5},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	recs, err := svc.GenerateRecommendations(context.Background(), 42, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 popular items, got %d", len(recs))
	}
	if recs[0].Product.ID != 2 || recs[1].Product.ID != 1 {
		t.Fatalf("expected popularity order [2 1], got [%d %d]", recs[0].Product.ID, recs[1].Product.ID)
	}
	for _, r := range recs {
		if r.Algorithm != domain.AlgorithmPopularity {
			t.Fatalf("cold start should serve popularity items, got %q", r.Algorithm)
		}
	}
}

func TestGenerateRecommendationsStoreErrorFallsBackToPopular(t *testing.T) {
	ir := &fakeInteractionRepo{
		byUserErr: map[uint]error{1: errors.New("connection refused")},
		aggRows:   []domain.ProductScore{{ProductID: 3, TotalScore: 4, Count: 1}},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		3: {ID: 3, Name: "C", Rating: 3.5},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	recs, err := svc.GenerateRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("store errors must degrade, not fail: %v", err)
	}
	if len(recs) != 1 || recs[0].Product.ID != 3 {
		t.Fatalf("expected popular fallback with product 3, got %+v", recs)
	}
}

func TestGenerateRecommendationsNeverReturnsInteractedProducts(t *testing.T) {
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			1: {interaction(1, 1, domain.InteractionPurchase), interaction(1, 2, domain.InteractionView)},
			2: {interaction(2, 1, domain.InteractionLike), interaction(2, 3, domain.InteractionLike)},
		},
		aggRows: []domain.ProductScore{
			{ProductID: 1, TotalScore: 20, Count: 5},
			{ProductID: 4, TotalScore: 10, Count: 3},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Category: "Books", Price: 10, Rating: 4},
		2: {ID: 2, Category: "Books", Price: 12, Rating: 4},
		3: {ID: 3, Category: "Books", Price: 11, Rating: 4.5},
		4: {ID: 4, Category: "Games", Price: 50, Rating: 3},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{ids: []uint{1, 2}}, nil)

	recs, err := svc.GenerateRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations for an active user")
	}
	for _, r := range recs {
		if r.Product.ID == 1 || r.Product.ID == 2 {
			t.Fatalf("recommended already-interacted product %d", r.Product.ID)
		}
	}
}

func TestGenerateRecommendationsRespectsLimit(t *testing.T) {
	products := map[uint64]domain.Product{}
	rows := make([]domain.ProductScore, 0, 30)
	for i := uint64(1); i <= 30; i++ {
		products[i] = domain.Product{ID: i, Category: "Misc", Price: float64(i), Rating: 3}
		rows = append(rows, domain.ProductScore{ProductID: i, TotalScore: float64(40 - i), Count: 1})
	}
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			1: {interaction(1, 31, domain.InteractionView)},
		},
		aggRows: rows,
	}
	pr := &fakeProductRepo{products: products}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	recs, err := svc.GenerateRecommendations(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) > 5 {
		t.Fatalf("expected at most 5 items, got %d", len(recs))
	}

	recs, err = svc.GenerateRecommendations(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) > 10 {
		t.Fatalf("limit 0 should default to 10, got %d items", len(recs))
	}
}

func TestGetPopularProductsCacheHitSkipsStore(t *testing.T) {
	cached := []domain.RecommendationItem{
		{Product: domain.Product{ID: 7}, Algorithm: domain.AlgorithmPopularity},
	}
	ir := &fakeInteractionRepo{aggErr: errors.New("store must not be hit")}
	pr := &fakeProductRepo{}
	cache := &fakeCache{stored: cached}
	svc := newTestService(ir, pr, &fakeUserRepo{}, cache)

	recs, err := svc.GetPopularProducts(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Product.ID != 7 {
		t.Fatalf("expected cached item, got %+v", recs)
	}
	if cache.gets != 1 {
		t.Fatalf("expected one cache read, got %d", cache.gets)
	}
}

func TestGetPopularProductsCacheMissPopulatesCache(t *testing.T) {
	ir := &fakeInteractionRepo{
		aggRows: []domain.ProductScore{{ProductID: 5, TotalScore: 8, Count: 2}},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		5: {ID: 5, Rating: 4},
	}}
	cache := &fakeCache{}
	svc := newTestService(ir, pr, &fakeUserRepo{}, cache)

	recs, err := svc.GetPopularProducts(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected one popular item, got %d", len(recs))
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache population after miss, got %d sets", cache.sets)
	}
}

func TestGetPopularProductsWithExclusionsBypassesCache(t *testing.T) {
	ir := &fakeInteractionRepo{
		aggRows: []domain.ProductScore{
			{ProductID: 1, TotalScore: 9, Count: 3},
			{ProductID: 2, TotalScore: 5, Count: 2},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1}, 2: {ID: 2},
	}}
	cache := &fakeCache{stored: []domain.RecommendationItem{{Product: domain.Product{ID: 1}}}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, cache)

	recs, err := svc.GetPopularProducts(context.Background(), 10, []uint64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.gets != 0 || cache.sets != 0 {
		t.Fatalf("exclusion queries must bypass the cache, gets=%d sets=%d", cache.gets, cache.sets)
	}
	if len(recs) != 1 || recs[0].Product.ID != 2 {
		t.Fatalf("expected only product 2, got %+v", recs)
	}
}

func TestDebugRecommendColdStart(t *testing.T) {
	ir := &fakeInteractionRepo{
		aggRows: []domain.ProductScore{{ProductID: 9, TotalScore: 3, Count: 1}},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{9: {ID: 9}}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	debug, err := svc.DebugRecommend(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(debug.Popularity) != 1 || len(debug.Blended) != 1 {
		t.Fatalf("cold start debug should carry popular as blended, got %+v", debug)
	}
	if debug.Blended[0].Product.ID != debug.Popularity[0].Product.ID {
		t.Fatal("blended and popularity must match for a cold-start user")
	}
	if len(debug.Collaborative) != 0 || len(debug.Content) != 0 {
		t.Fatal("cold start must not produce collaborative or content items")
	}
}

func TestDebugRecommendExposesProfileAndSimilarUsers(t *testing.T) {
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			1: {interaction(1, 1, domain.InteractionPurchase)},
			2: {interaction(2, 1, domain.InteractionLike), interaction(2, 2, domain.InteractionLike)},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Category: "Books", Price: 20, Rating: 4},
		2: {ID: 2, Category: "Books", Price: 25, Rating: 4.5},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{ids: []uint{1, 2}}, nil)

	debug, err := svc.DebugRecommend(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if debug.Profile == nil {
		t.Fatal("expected a profile for an active user")
	}
	if debug.Profile.CategoryScores["Books"] != 5 {
		t.Fatalf("expected Books category score 5, got %v", debug.Profile.CategoryScores["Books"])
	}
	if len(debug.SimilarUsers) != 1 || debug.SimilarUsers[0].UserID != 2 {
		t.Fatalf("expected user 2 as similar, got %+v", debug.SimilarUsers)
	}
}

func TestGetHistoryDefaultsLimit(t *testing.T) {
	ins := make([]domain.Interaction, 0, 60)
	for i := 0; i < 60; i++ {
		ins = append(ins, interaction(1, uint64(i+1), domain.InteractionView))
	}
	ir := &fakeInteractionRepo{byUser: map[uint][]domain.Interaction{1: ins}}
	svc := newTestService(ir, &fakeProductRepo{}, &fakeUserRepo{}, nil)

	history, err := svc.GetHistory(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 50 {
		t.Fatalf("expected default history limit 50, got %d", len(history))
	}
}

// stalledAggRepo hangs the popularity aggregation until its context expires,
// simulating a wedged group-by query.
type stalledAggRepo struct {
	fakeInteractionRepo
}

func (f *stalledAggRepo) AggregateByProduct(ctx context.Context, since time.Time, excludeIDs []uint64, weights map[string]float64, limit int) ([]domain.ProductScore, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGenerateRecommendationsStalledBranchYieldsEmptyNotFailure(t *testing.T) {
	ir := &stalledAggRepo{fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			1: {interaction(1, 1, domain.InteractionPurchase)},
			2: {interaction(2, 1, domain.InteractionLike), interaction(2, 2, domain.InteractionLike)},
		},
		byUserErr: map[uint]error{},
	}}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Category: "Books", Price: 20, Rating: 4},
		2: {ID: 2, Category: "Books", Price: 22, Rating: 4.5},
		3: {ID: 3, Category: "Books", Price: 25, Rating: 4.2},
	}}
	cfg := DefaultConfig()
	cfg.BranchTimeout = 100 * time.Millisecond
	svc := NewRecommendationService(ir, pr, &fakeUserRepo{ids: []uint{1, 2}}, nil, cfg)

	start := time.Now()
	recs, err := svc.GenerateRecommendations(context.Background(), 1, 10)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("a stalled branch must not fail the request: %v", err)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("request took %v, the branch deadline did not cut the stalled aggregation loose", elapsed)
	}
	if len(recs) == 0 {
		t.Fatal("healthy branches must still produce recommendations")
	}
	for _, r := range recs {
		if r.Algorithm == domain.AlgorithmPopularity || r.Algorithm == domain.AlgorithmRating {
			t.Fatalf("the timed-out popularity branch must yield nothing, got %q item %d", r.Algorithm, r.Product.ID)
		}
	}
	found := false
	for _, r := range recs {
		if r.Product.ID == 2 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected product 2 from the healthy collaborative and content branches")
	}
}
