package service

import (
	"context"
	"fmt"
	"time"

	"restock-service/internal/broker"
	"restock-service/internal/forecast"
	"restock-service/internal/models"
	"restock-service/internal/redisclient"
	"restock-service/internal/store"
	"restock-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productCacheTTL = 5 * time.Minute

// ProductService handles product business logic
type ProductService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *ProductService {
	return &ProductService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	DefaultUnit   string  `json:"default_unit" binding:"required"`
	PackagingSize float64 `json:"packaging_size" binding:"required,gt=0"`
}

// CreateProduct creates a new product with empty purchase history
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	product := &models.Product{
		ID:                  uuid.New().String(),
		Name:                req.Name,
		Category:            req.Category,
		DefaultUnit:         req.DefaultUnit,
		PackagingSize:       req.PackagingSize,
		AverageLifespanDays: 0,
		CreatedAt:           time.Now(),
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))

	s.invalidateCache(ctx)
	return product, nil
}

// UpdateProduct updates a product's descriptive fields. Derived fields are
// owned by the recompute step and are not touched here.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}

	product.Name = req.Name
	product.Category = req.Category
	product.DefaultUnit = req.DefaultUnit
	product.PackagingSize = req.PackagingSize

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCache(ctx)
	return product, nil
}

// DeleteProduct deletes a product; the database cascades its purchase history
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return ErrNotFound
	}

	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	util.ProductsDeletedTotal.Inc()
	s.logger.Info("Product deleted", zap.String("product_id", productID))

	event := &models.ProductDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductDeleted,
			Timestamp: time.Now(),
		},
		ProductID: productID,
	}
	if err := s.eventPublisher.PublishProductDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductDeleted event", zap.Error(err))
	}

	s.invalidateCache(ctx)
	return nil
}

// GetProduct retrieves a single product
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListProducts returns all products enriched with their runout forecast,
// ranked most urgent first. Urgency is computed fresh on every call because
// it depends on the current date; only the raw rows come from the cache.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.ProductWithUrgency, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	now := time.Now()
	enriched := make([]models.ProductWithUrgency, 0, len(products))
	for _, product := range products {
		history, err := s.store.GetPurchasesByProductID(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load purchases for product %s: %w", product.ID, err)
		}

		var lastPurchase *models.Purchase
		if len(history) > 0 {
			lastPurchase = &history[0]
		}

		enriched = append(enriched, forecast.Classify(product, lastPurchase, now))
	}

	forecast.Rank(enriched)
	return enriched, nil
}

// loadProducts reads the product list through the Redis cache
func (s *ProductService) loadProducts(ctx context.Context) ([]models.Product, error) {
	cached, err := s.redis.GetCachedProducts(ctx)
	if err != nil {
		s.logger.Warn("Product cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.redis.SetCachedProducts(ctx, products, productCacheTTL); err != nil {
		s.logger.Warn("Product cache write failed", zap.Error(err))
	}
	return products, nil
}

func (s *ProductService) invalidateCache(ctx context.Context) {
	if err := s.redis.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
}
