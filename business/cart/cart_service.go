package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartshop/domain"
	"smartshop/pkg/logger"
)

// CartRepository contract interface
type CartRepository interface {
	FindByUser(ctx context.Context, userID uint) (domain.Cart, error)
	Upsert(ctx context.Context, cart *domain.Cart) error
	AddItem(ctx context.Context, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, productID uint64, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uint64) error
	Clear(ctx context.Context, cartID uint64) error
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	DecrementStock(ctx context.Context, id uint64, quantity int) error
}

// InteractionRepository contract interface
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
}

type CartView struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

type CheckoutResult struct {
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

type cartService struct {
	cartRepo        CartRepository
	productRepo     ProductRepository
	interactionRepo InteractionRepository
}

func NewCartService(cartRepo CartRepository, productRepo ProductRepository, interactionRepo InteractionRepository) *cartService {
	return &cartService{
		cartRepo:        cartRepo,
		productRepo:     productRepo,
		interactionRepo: interactionRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uint) (CartView, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when getting cart")
		return CartView{}, fmt.Errorf("context error: %w", err)
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return CartView{}, err
	}

	total := 0.0
	for _, item := range cart.Items {
		total += item.Product.Price * float64(item.Quantity)
	}

	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return CartView{Items: cart.Items, Total: total}, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uint, productID uint64, quantity int) (CartView, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when adding cart item")
		return CartView{}, fmt.Errorf("context error: %w", err)
	}

	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		logger.Error("product not found for cart add", err)
		return CartView{}, errors.New("product not found")
	}

	if product.Stock < quantity {
		return CartView{}, errors.New("insufficient stock")
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return CartView{}, err
	}

	if cart.ID == 0 {
		cart = domain.Cart{UserID: userID}
		if err := s.cartRepo.Upsert(ctx, &cart); err != nil {
			logger.Error("Failed to create cart", err)
			return CartView{}, err
		}
	}

	existing := findItem(cart.Items, productID)
	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if product.Stock < newQuantity {
			return CartView{}, errors.New("insufficient stock for this quantity")
		}
		if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, productID, newQuantity); err != nil {
			logger.Error("Failed to update cart item quantity", err)
			return CartView{}, err
		}
	} else {
		item := domain.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.cartRepo.AddItem(ctx, &item); err != nil {
			logger.Error("Failed to add cart item", err)
			return CartView{}, err
		}
	}

	// record the cart signal for the recommendation engine; best effort
	s.recordInteraction(ctx, userID, productID, domain.InteractionCart)

	return s.GetCart(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID uint, productID uint64, quantity int) (CartView, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating cart item")
		return CartView{}, fmt.Errorf("context error: %w", err)
	}

	if quantity < 1 {
		return CartView{}, errors.New("quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		logger.Error("product not found for cart update", err)
		return CartView{}, errors.New("product not found")
	}

	if product.Stock < quantity {
		return CartView{}, errors.New("insufficient stock")
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return CartView{}, err
	}
	if cart.ID == 0 {
		return CartView{}, errors.New("cart not found")
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		logger.Error("Failed to update cart item", err)
		return CartView{}, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID uint, productID uint64) (CartView, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when removing cart item")
		return CartView{}, fmt.Errorf("context error: %w", err)
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return CartView{}, err
	}
	if cart.ID == 0 {
		return CartView{}, errors.New("cart not found")
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		logger.Error("Failed to remove cart item", err)
		return CartView{}, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) ClearCart(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when clearing cart")
		return fmt.Errorf("context error: %w", err)
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return err
	}
	if cart.ID == 0 {
		return nil
	}

	return s.cartRepo.Clear(ctx, cart.ID)
}

// Checkout purchases everything in the cart: validates stock, decrements it,
// records purchase interactions and clears the cart.
func (s *cartService) Checkout(ctx context.Context, userID uint) (CheckoutResult, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when checking out")
		return CheckoutResult{}, fmt.Errorf("context error: %w", err)
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return CheckoutResult{}, err
	}

	if cart.ID == 0 || len(cart.Items) == 0 {
		return CheckoutResult{}, errors.New("cart is empty")
	}

	// Validate stock and compute total before touching anything
	total := 0.0
	for _, item := range cart.Items {
		if item.Product.ID == 0 {
			return CheckoutResult{}, errors.New("invalid product in cart")
		}
		if item.Product.Stock < item.Quantity {
			return CheckoutResult{}, fmt.Errorf("insufficient stock for %s", item.Product.Name)
		}
		total += item.Product.Price * float64(item.Quantity)
	}

	for _, item := range cart.Items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("Failed to decrement stock during checkout", err)
			return CheckoutResult{}, fmt.Errorf("failed to purchase %s: %w", item.Product.Name, err)
		}

		s.recordInteraction(ctx, userID, item.ProductID, domain.InteractionPurchase)
	}

	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		logger.Error("Failed to clear cart after checkout", err)
		return CheckoutResult{}, err
	}

	logger.Info("checkout successful", "user_id", userID, "total", total, "items", len(cart.Items))

	return CheckoutResult{Total: total, ItemCount: len(cart.Items)}, nil
}

func (s *cartService) recordInteraction(ctx context.Context, userID uint, productID uint64, interactionType string) {
	interaction := &domain.Interaction{
		UserID:    userID,
		ProductID: productID,
		Type:      interactionType,
		CreatedAt: time.Now(),
	}
	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		logger.Warn("failed to record interaction", "type", interactionType, "error", err)
	}
}

func findItem(items []domain.CartItem, productID uint64) *domain.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			return &items[i]
		}
	}
	return nil
}
