package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartshop/domain"
	"smartshop/internal/repository/postgres"
	"smartshop/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAll(ctx context.Context, filter postgres.ProductFilter) ([]domain.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

// InteractionRepository contract interface
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
}

type ProductPage struct {
	Products    []domain.Product `json:"products"`
	Total       int64            `json:"total"`
	TotalPages  int64            `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
}

type productService struct {
	productRepo     ProductRepository
	interactionRepo InteractionRepository
}

func NewProductService(productRepo ProductRepository, interactionRepo InteractionRepository) *productService {
	return &productService{
		productRepo:     productRepo,
		interactionRepo: interactionRepo,
	}
}

func (s *productService) GetProducts(ctx context.Context, filter postgres.ProductFilter) (ProductPage, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when listing products")
		return ProductPage{}, fmt.Errorf("context error: %w", err)
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to find products", err)
		return ProductPage{}, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return ProductPage{
		Products:    products,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		logger.Error("invalid product id")
		return nil, errors.New("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get product by id")
		return nil, fmt.Errorf("context error: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err.Error())
		return nil, err
	}

	return &product, nil
}

func (s *productService) GetCategories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when listing categories")
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}

	return categories, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if product.Name == "" {
		logger.Error("Invalid product data: name is required")
		return nil, errors.New("product name is required")
	}

	if product.Category == "" {
		logger.Error("Invalid product data: category is required")
		return nil, errors.New("product category is required")
	}

	if product.Price < 0 {
		logger.Error("Invalid product data: price cannot be negative")
		return nil, errors.New("price cannot be negative")
	}

	if product.Stock < 0 {
		logger.Error("Invalid product data: stock cannot be negative")
		return nil, errors.New("stock cannot be negative")
	}

	if product.Rating < 0 || product.Rating > 5 {
		logger.Error("Invalid product data: rating must be between 0 and 5")
		return nil, errors.New("rating must be between 0 and 5")
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info("product created successfully", "product_id", product.ID)

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if product.ID == 0 {
		logger.Error("Invalid product data: ID is required")
		return nil, errors.New("product ID is required")
	}

	if product.Name == "" {
		logger.Error("Invalid product data: name is required")
		return nil, errors.New("product name is required")
	}

	if product.Price < 0 {
		logger.Error("Invalid product data: price cannot be negative")
		return nil, errors.New("price cannot be negative")
	}

	// Verify product exists
	_, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("product not found", err)
		return nil, errors.New("product not found")
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updatedProduct, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	logger.Info("product updated success", "product_id", product.ID)

	return &updatedProduct, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		logger.Error("Invalid product id when deleting product")
		return errors.New("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting product")
		return fmt.Errorf("context error: %w", err)
	}

	_, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("product not found", err)
		return errors.New("product not found")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.Info("product deleted success", "product_id", id)

	return nil
}

// RecordInteraction appends one interaction row for the recommendation
// engine to consume. Rows are immutable once written.
func (s *productService) RecordInteraction(ctx context.Context, userID uint, productID uint64, interactionType string, rating *int) (*domain.Interaction, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when recording interaction")
		return nil, fmt.Errorf("context error: %w", err)
	}

	switch interactionType {
	case domain.InteractionView, domain.InteractionLike, domain.InteractionCart, domain.InteractionPurchase:
	default:
		logger.Error("Invalid interaction type", "type", interactionType)
		return nil, errors.New("invalid interaction type")
	}

	if rating != nil && (*rating < 1 || *rating > 5) {
		logger.Error("Invalid interaction rating", "rating", *rating)
		return nil, errors.New("rating must be between 1 and 5")
	}

	// Verify product exists
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		logger.Error("product not found for interaction", err)
		return nil, errors.New("product not found")
	}

	interaction := &domain.Interaction{
		UserID:    userID,
		ProductID: productID,
		Type:      interactionType,
		Rating:    rating,
		CreatedAt: time.Now(),
	}

	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		logger.Error("failed to record interaction", err)
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	return interaction, nil
}
