//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"testing"

	"smartshop/domain"
)

func TestCollaborativeRecommendationsWeightsAndOrdering(t *testing.T) {
	// user 2 shares product 1 with the target (jaccard 1/3) and has strong
	// signals on products 5 and 6
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			2: {
				interaction(2, 1, domain.InteractionLike),
				interaction(2, 5, domain.InteractionPurchase),
				interaction(2, 6, domain.InteractionLike),
			},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		5: {ID: 5}, 6: {ID: 6},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{ids: []uint{1, 2}}, nil)

	target := []domain.Interaction{
		interaction(1, 1, domain.InteractionView),
		interaction(1, 2, domain.InteractionView),
	}

	items := svc.collaborativeRecommendations(context.Background(), 1, target, []uint64{1, 2}, 10)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	// similarity |{1}| / |{1,2,5,6} union| = 1/4; purchase outweighs like
	sim := 0.25
	if items[0].Product.ID != 5 || !almostEqual(items[0].Score, 5*sim) {
		t.Fatalf("expected product 5 with score %v first, got %d/%v", 5*sim, items[0].Product.ID, items[0].Score)
	}
	if items[1].Product.ID != 6 || !almostEqual(items[1].Score, 4*sim) {
		t.Fatalf("expected product 6 with score %v, got %d/%v", 4*sim, items[1].Product.ID, items[1].Score)
	}
	for _, it := range items {
		if it.Algorithm != domain.AlgorithmCollaborative {
			t.Fatalf("unexpected algorithm %q", it.Algorithm)
		}
	}
}

func TestCollaborativeRecommendationsExcludesInteracted(t *testing.T) {
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			2: {
				interaction(2, 1, domain.InteractionPurchase),
				interaction(2, 3, domain.InteractionPurchase),
			},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1}, 3: {ID: 3},
	}}
	svc := newTestService(ir, pr, &fakeUserRepo{ids: []uint{1, 2}}, nil)

	target := []domain.Interaction{interaction(1, 1, domain.InteractionPurchase)}

	items := svc.collaborativeRecommendations(context.Background(), 1, target, []uint64{1}, 10)
	for _, it := range items {
		if it.Product.ID == 1 {
			t.Fatal("interacted product leaked into collaborative results")
		}
	}
	if len(items) != 1 || items[0].Product.ID != 3 {
		t.Fatalf("expected only product 3, got %+v", items)
	}
}

func TestCollaborativeRecommendationsNoSimilarUsers(t *testing.T) {
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			2: {interaction(2, 99, domain.InteractionLike)},
		},
	}
	svc := newTestService(ir, &fakeProductRepo{}, &fakeUserRepo{ids: []uint{1, 2}}, nil)

	target := []domain.Interaction{interaction(1, 1, domain.InteractionView)}

	items := svc.collaborativeRecommendations(context.Background(), 1, target, []uint64{1}, 10)
	if len(items) != 0 {
		t.Fatalf("no overlap means no collaborative items, got %d", len(items))
	}
}

func TestCollaborativeRecommendationsSkipsBrokenSimilarUser(t *testing.T) {
	// both candidates are similar; user 2's detailed history is unreadable
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			2: {interaction(2, 1, domain.InteractionLike)},
			3: {interaction(3, 1, domain.InteractionLike), interaction(3, 4, domain.InteractionLike)},
		},
	}
	pr := &fakeProductRepo{products: map[uint64]domain.Product{4: {ID: 4}}}
	svc := newTestService(ir, pr, &fakeUserRepo{ids: []uint{1, 2, 3}}, nil)

	target := []domain.Interaction{interaction(1, 1, domain.InteractionPurchase)}

	// break user 2 only after similarity has been computed
	items := func() []domain.RecommendationItem {
		ir.byUserErr[2] = errors.New("partition lost")
		defer delete(ir.byUserErr, 2)
		// findSimilarUsers also reads user 2, so it drops out of the similar
		// set, and user 3 still contributes
		return svc.collaborativeRecommendations(context.Background(), 1, target, []uint64{1}, 10)
	}()

	if len(items) != 1 || items[0].Product.ID != 4 {
		t.Fatalf("expected product 4 from the healthy similar user, got %+v", items)
	}
}

func TestCollaborativeRecommendationsHydrationDropsMissingProducts(t *testing.T) {
	ir := &fakeInteractionRepo{
		byUser: map[uint][]domain.Interaction{
			2: {
				interaction(2, 1, domain.InteractionLike),
				interaction(2, 7, domain.InteractionPurchase),
				interaction(2, 8, domain.InteractionPurchase),
			},
		},
	}
	// product 7 vanished from the catalog
	pr := &fakeProductRepo{products: map[uint64]domain.Product{8: {ID: 8}}}
	svc := newTestService(ir, pr, &fakeUserRepo{ids: []uint{1, 2}}, nil)

	target := []domain.Interaction{interaction(1, 1, domain.InteractionView)}

	items := svc.collaborativeRecommendations(context.Background(), 1, target, []uint64{1}, 10)
	if len(items) != 1 || items[0].Product.ID != 8 {
		t.Fatalf("expected only the still-listed product 8, got %+v", items)
	}
}
