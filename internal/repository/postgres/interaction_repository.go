package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartshop/domain"

	"gorm.io/gorm"
)

type InteractionRepository struct {
	DB *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{
		DB: db,
	}
}

func (r *InteractionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(interaction).Error; err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}

	return nil
}

func (r *InteractionRepository) FindByUser(ctx context.Context, userID uint, limit int) ([]domain.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var interactions []domain.Interaction
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find interactions: %w", err)
	}

	return interactions, nil
}

func (r *InteractionRepository) FindByUserWithTypes(ctx context.Context, userID uint, types []string, limit int) ([]domain.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var interactions []domain.Interaction
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND type IN ?", userID, types).
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find interactions by types: %w", err)
	}

	return interactions, nil
}

// AggregateByProduct groups interactions since the given time by product,
// summing a per-type weight. The weighting happens in SQL so the window
// scan never leaves the database.
func (r *InteractionRepository) AggregateByProduct(ctx context.Context, since time.Time, excludeIDs []uint64, weights map[string]float64, limit int) ([]domain.ProductScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	caseExpr, args := weightCaseExpr(weights)

	query := r.DB.WithContext(ctx).
		Model(&domain.Interaction{}).
		Select(fmt.Sprintf("product_id, SUM(%s) AS total_score, COUNT(*) AS count", caseExpr), args...).
		Where("created_at >= ?", since).
		Group("product_id").
		Order("total_score DESC").
		Limit(limit)

	if len(excludeIDs) > 0 {
		query = query.Where("product_id NOT IN ?", excludeIDs)
	}

	var rows []domain.ProductScore
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate interactions: %w", err)
	}

	return rows, nil
}

// weightCaseExpr renders a CASE WHEN expression mapping interaction type to
// its weight, with a default of 1 for unknown types.
func weightCaseExpr(weights map[string]float64) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(weights)*2)

	sb.WriteString("CASE type")
	// fixed clause order keeps the generated SQL stable
	for _, t := range []string{
		domain.InteractionPurchase,
		domain.InteractionLike,
		domain.InteractionCart,
		domain.InteractionView,
	} {
		w, ok := weights[t]
		if !ok {
			continue
		}
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, t, w)
	}
	sb.WriteString(" ELSE 1 END")

	return sb.String(), args
}
