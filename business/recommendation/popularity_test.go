//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartshop/domain"
)

func TestPopularProductsWindowAndWeights(t *testing.T) {
	ir := &fakeInteractionRepo{
		aggRows: []domain.ProductScore{{ProductID: 1, TotalScore: 5, Count: 1}},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{1: {ID: 1}}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	before := time.Now().Add(-30 * 24 * time.Hour)
	if _, err := svc.popularProducts(context.Background(), 10, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().Add(-30 * 24 * time.Hour)

	if ir.lastSince.Before(before) || ir.lastSince.After(after) {
		t.Fatalf("since = %v, expected a 30-day trailing window", ir.lastSince)
	}

	// popularity uses its own scale, distinct from the collaborative one
	want := map[string]float64{
		domain.InteractionPurchase: 5,
		domain.InteractionLike:     3,
		domain.InteractionCart:     2,
		domain.InteractionView:     1,
	}
	for typ, weight := range want {
		if ir.lastWeights[typ] != weight {
			t.Fatalf("weight[%s] = %v, want %v", typ, ir.lastWeights[typ], weight)
		}
	}
}

func TestPopularProductsOrderingAndExplanation(t *testing.T) {
	ir := &fakeInteractionRepo{
		aggRows: []domain.ProductScore{
			{ProductID: 2, TotalScore: 15, Count: 4},
			{ProductID: 1, TotalScore: 7, Count: 2},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1}, 2: {ID: 2},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	items, err := svc.popularProducts(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Product.ID != 2 || items[1].Product.ID != 1 {
		t.Fatalf("expected aggregation order [2 1], got [%d %d]", items[0].Product.ID, items[1].Product.ID)
	}
	if items[0].Algorithm != domain.AlgorithmPopularity {
		t.Fatalf("unexpected algorithm %q", items[0].Algorithm)
	}
	if items[0].Score != 15 {
		t.Fatalf("expected aggregation score carried over, got %v", items[0].Score)
	}
}

func TestPopularProductsAggregationErrorFallsBackToRating(t *testing.T) {
	ir := &fakeInteractionRepo{aggErr: errors.New("aggregation timeout")}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Rating: 3.0},
		2: {ID: 2, Rating: 4.8},
		3: {ID: 3, Rating: 4.1},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	items, err := svc.popularProducts(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("fallback must not surface the aggregation error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected full rating-sorted catalog, got %d items", len(items))
	}
	if items[0].Product.ID != 2 || items[1].Product.ID != 3 || items[2].Product.ID != 1 {
		t.Fatalf("expected rating order [2 3 1], got [%d %d %d]",
			items[0].Product.ID, items[1].Product.ID, items[2].Product.ID)
	}
	for _, it := range items {
		if it.Algorithm != domain.AlgorithmRating {
			t.Fatalf("fallback items must be tagged as rating, got %q", it.Algorithm)
		}
	}
}

func TestPopularProductsZeroRowsFallsBackToRating(t *testing.T) {
	// fresh system: the interactions table is empty but the catalog is not
	ir := &fakeInteractionRepo{}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Rating: 3.2},
		2: {ID: 2, Rating: 4.7},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	items, err := svc.popularProducts(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("non-empty catalog must never yield an empty list, got %d items", len(items))
	}
	if items[0].Product.ID != 2 || items[1].Product.ID != 1 {
		t.Fatalf("expected rating order [2 1], got [%d %d]", items[0].Product.ID, items[1].Product.ID)
	}
	for _, it := range items {
		if it.Algorithm != domain.AlgorithmRating {
			t.Fatalf("fallback items must be tagged as rating, got %q", it.Algorithm)
		}
	}
}

func TestPopularProductsZeroRowsFallbackHonorsExclusions(t *testing.T) {
	ir := &fakeInteractionRepo{}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Rating: 3.2},
		2: {ID: 2, Rating: 4.7},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	items, err := svc.popularProducts(context.Background(), 10, []uint64{2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Product.ID != 1 {
		t.Fatalf("excluded product must not reappear in the fallback, got %+v", items)
	}
}

func TestPopularProductsEmptyCatalogYieldsEmpty(t *testing.T) {
	ir := &fakeInteractionRepo{aggErr: errors.New("no interactions table")}
	pr := &fakeProductRepo{}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	items, err := svc.popularProducts(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("empty catalog must yield empty output, got %d items", len(items))
	}
}

func TestPopularProductsBothStoresDownErrors(t *testing.T) {
	ir := &fakeInteractionRepo{aggErr: errors.New("down")}
	pr := &fakeProductRepo{topRatedErr: errors.New("also down")}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	if _, err := svc.popularProducts(context.Background(), 10, nil); err == nil {
		t.Fatal("expected an error when both aggregation and catalog are unreadable")
	}
}

func TestPopularProductsPassesExclusions(t *testing.T) {
	ir := &fakeInteractionRepo{
		aggRows: []domain.ProductScore{{ProductID: 4, TotalScore: 2, Count: 1}},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{4: {ID: 4}}}
	svc := newTestService(ir, pr, &fakeUserRepo{}, nil)

	exclude := []uint64{7, 8}
	if _, err := svc.popularProducts(context.Background(), 10, exclude); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ir.lastExclude) != 2 || ir.lastExclude[0] != 7 || ir.lastExclude[1] != 8 {
		t.Fatalf("exclusions not forwarded to aggregation, got %v", ir.lastExclude)
	}
}
