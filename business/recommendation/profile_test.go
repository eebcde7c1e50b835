//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"testing"

	"smartshop/domain"
)

func TestBuildUserProfile(t *testing.T) {
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		10: {ID: 10, Category: "Electronics", Price: 100, Rating: 5},
		20: {ID: 20, Category: "Books", Price: 10, Rating: 4},
	}}
	svc := newTestService(&fakeInteractionRepo{}, pr, &fakeUserRepo{}, nil)

	interactions := []domain.Interaction{
		interaction(1, 10, domain.InteractionPurchase),
		interaction(1, 20, domain.InteractionView),
	}

	profile := svc.buildUserProfile(context.Background(), interactions)

	if got := profile.CategoryScores["Electronics"]; got != 5 {
		t.Fatalf("Electronics score = %v, want 5", got)
	}
	if got := profile.CategoryScores["Books"]; got != 1 {
		t.Fatalf("Books score = %v, want 1", got)
	}
	if profile.AvgPrice != 55 {
		t.Fatalf("AvgPrice = %v, want 55", profile.AvgPrice)
	}
	if profile.AvgRating != 4.5 {
		t.Fatalf("AvgRating = %v, want 4.5", profile.AvgRating)
	}
	if profile.PreferredTypes[domain.InteractionPurchase] != 1 || profile.PreferredTypes[domain.InteractionView] != 1 {
		t.Fatalf("unexpected preferred types: %+v", profile.PreferredTypes)
	}
}

func TestBuildUserProfileFirstInteractionWins(t *testing.T) {
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		10: {ID: 10, Category: "Electronics", Price: 100, Rating: 5},
	}}
	svc := newTestService(&fakeInteractionRepo{}, pr, &fakeUserRepo{}, nil)

	// newest-first ordering: the view is the first interaction seen, so the
	// later purchase must not bump the category weight
	interactions := []domain.Interaction{
		interaction(1, 10, domain.InteractionView),
		interaction(1, 10, domain.InteractionPurchase),
	}

	profile := svc.buildUserProfile(context.Background(), interactions)

	if got := profile.CategoryScores["Electronics"]; got != 1 {
		t.Fatalf("Electronics score = %v, want 1 (first interaction is a view)", got)
	}
	if profile.AvgPrice != 100 {
		t.Fatalf("AvgPrice = %v, want 100 (product counted once)", profile.AvgPrice)
	}
	if profile.PreferredTypes[domain.InteractionView] != 1 || profile.PreferredTypes[domain.InteractionPurchase] != 1 {
		t.Fatalf("every interaction counts toward preferred types: %+v", profile.PreferredTypes)
	}
}

func TestBuildUserProfileIsDeterministic(t *testing.T) {
	pr := &fakeProductRepo{products: map[uint64]domain.Product{
		1: {ID: 1, Category: "Books", Price: 15, Rating: 4},
		2: {ID: 2, Category: "Games", Price: 60, Rating: 3.5},
	}}
	svc := newTestService(&fakeInteractionRepo{}, pr, &fakeUserRepo{}, nil)

	interactions := []domain.Interaction{
		interaction(1, 1, domain.InteractionLike),
		interaction(1, 2, domain.InteractionCart),
	}

	first := svc.buildUserProfile(context.Background(), interactions)
	for i := 0; i < 10; i++ {
		again := svc.buildUserProfile(context.Background(), interactions)
		if again.AvgPrice != first.AvgPrice || again.AvgRating != first.AvgRating {
			t.Fatal("profile averages changed between identical runs")
		}
		for cat, score := range first.CategoryScores {
			if again.CategoryScores[cat] != score {
				t.Fatalf("category %q score changed between identical runs", cat)
			}
		}
	}
}

func TestBuildUserProfileCatalogErrorLeavesAveragesZero(t *testing.T) {
	pr := &fakeProductRepo{findByIDsErr: errors.New("down")}
	svc := newTestService(&fakeInteractionRepo{}, pr, &fakeUserRepo{}, nil)

	profile := svc.buildUserProfile(context.Background(),
		[]domain.Interaction{interaction(1, 1, domain.InteractionPurchase)})

	if profile.AvgPrice != 0 || profile.AvgRating != 0 {
		t.Fatalf("expected zero averages when catalog is unreadable, got %+v", profile)
	}
	if len(profile.CategoryScores) != 0 {
		t.Fatalf("expected no category scores, got %+v", profile.CategoryScores)
	}
	if profile.PreferredTypes[domain.InteractionPurchase] != 1 {
		t.Fatal("preferred types should still count raw interactions")
	}
}
