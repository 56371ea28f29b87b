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

// PurchaseService handles purchase mutations. Every mutation runs as one
// logical unit: write, recompute the owning product's derived fields, then
// invalidate cached reads. A per-product Redis lock keeps concurrent
// mutations of the same product from interleaving with the recomputation.
type PurchaseService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	lockTTL        time.Duration
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	lockTTL time.Duration,
) *PurchaseService {
	return &PurchaseService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		lockTTL:        lockTTL,
	}
}

// RecordPurchaseRequest represents a request to record a purchase
type RecordPurchaseRequest struct {
	ProductID string    `json:"product_id" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Quantity  float64   `json:"quantity" binding:"required,gt=0"`
	Unit      string    `json:"unit" binding:"required"`
	Price     *float64  `json:"price,omitempty"`
}

// RecordPurchase saves a new purchase event and refreshes the owning
// product's derived fields
func (s *PurchaseService) RecordPurchase(ctx context.Context, req *RecordPurchaseRequest) (*models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.RecordPurchase")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		util.PurchaseMutationsFailedTotal.WithLabelValues("unknown_product").Inc()
		return nil, ErrNotFound
	}

	unlock, err := s.lockProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	purchase := &models.Purchase{
		ID:        uuid.New().String(),
		ProductID: req.ProductID,
		Date:      req.Date,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		Price:     req.Price,
	}

	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		util.PurchaseMutationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	if err := s.recompute(ctx, req.ProductID); err != nil {
		return nil, err
	}

	util.PurchasesRecordedTotal.Inc()
	s.logger.Info("Purchase recorded",
		zap.String("purchase_id", purchase.ID),
		zap.String("product_id", purchase.ProductID))

	event := &models.PurchaseRecordedEvent{
		BaseEvent:  newBaseEvent(models.EventTypePurchaseRecorded),
		PurchaseID: purchase.ID,
		ProductID:  purchase.ProductID,
		Date:       purchase.Date,
		Quantity:   purchase.Quantity,
		Price:      purchase.Price,
	}
	if err := s.eventPublisher.PublishPurchaseRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish PurchaseRecorded event", zap.Error(err))
	}

	s.invalidateCache(ctx)
	return purchase, nil
}

// UpdatePurchaseRequest represents an edit of an existing purchase
type UpdatePurchaseRequest struct {
	Date     time.Time `json:"date" binding:"required"`
	Quantity float64   `json:"quantity" binding:"required,gt=0"`
	Unit     string    `json:"unit" binding:"required"`
	Price    *float64  `json:"price,omitempty"`
}

// UpdatePurchase edits a purchase's date, quantity, unit or price and
// refreshes the owning product's derived fields
func (s *PurchaseService) UpdatePurchase(ctx context.Context, purchaseID string, req *UpdatePurchaseRequest) (*models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.UpdatePurchase")
	defer span.End()

	purchase, err := s.store.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase == nil {
		return nil, ErrNotFound
	}

	unlock, err := s.lockProduct(ctx, purchase.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	purchase.Date = req.Date
	purchase.Quantity = req.Quantity
	purchase.Unit = req.Unit
	purchase.Price = req.Price

	if err := s.store.UpdatePurchase(ctx, purchase); err != nil {
		util.PurchaseMutationsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}

	if err := s.recompute(ctx, purchase.ProductID); err != nil {
		return nil, err
	}

	event := &models.PurchaseUpdatedEvent{
		BaseEvent:  newBaseEvent(models.EventTypePurchaseUpdated),
		PurchaseID: purchase.ID,
		ProductID:  purchase.ProductID,
		Date:       purchase.Date,
		Quantity:   purchase.Quantity,
		Price:      purchase.Price,
	}
	if err := s.eventPublisher.PublishPurchaseUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish PurchaseUpdated event", zap.Error(err))
	}

	s.invalidateCache(ctx)
	return purchase, nil
}

// DeletePurchase removes a purchase event and refreshes the owning
// product's derived fields
func (s *PurchaseService) DeletePurchase(ctx context.Context, purchaseID string) error {
	ctx, span := util.StartSpan(ctx, "PurchaseService.DeletePurchase")
	defer span.End()

	purchase, err := s.store.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase == nil {
		return ErrNotFound
	}

	unlock, err := s.lockProduct(ctx, purchase.ProductID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.DeletePurchase(ctx, purchaseID); err != nil {
		util.PurchaseMutationsFailedTotal.WithLabelValues("db_error").Inc()
		return fmt.Errorf("failed to delete purchase: %w", err)
	}

	if err := s.recompute(ctx, purchase.ProductID); err != nil {
		return err
	}

	event := &models.PurchaseDeletedEvent{
		BaseEvent:  newBaseEvent(models.EventTypePurchaseDeleted),
		PurchaseID: purchaseID,
		ProductID:  purchase.ProductID,
	}
	if err := s.eventPublisher.PublishPurchaseDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish PurchaseDeleted event", zap.Error(err))
	}

	s.invalidateCache(ctx)
	return nil
}

// ListPurchases returns purchases newest first, optionally for one product
func (s *PurchaseService) ListPurchases(ctx context.Context, productID string) ([]models.Purchase, error) {
	if productID == "" {
		return s.store.GetPurchases(ctx)
	}
	return s.store.GetPurchasesByProductID(ctx, productID)
}

// recompute rebuilds the product's cached averageLifespanDays and
// lastPurchaseDate from its full purchase history. An empty history clears
// both fields so the cache never outlives the data it was derived from.
func (s *PurchaseService) recompute(ctx context.Context, productID string) error {
	start := time.Now()
	defer func() {
		util.RecomputeLatency.Observe(time.Since(start).Seconds())
	}()

	history, err := s.store.GetPurchasesByProductID(ctx, productID)
	if err != nil {
		util.PurchaseMutationsFailedTotal.WithLabelValues("recompute_failed").Inc()
		return fmt.Errorf("failed to load history for recompute: %w", err)
	}

	lifespan := forecast.EstimateLifespanDays(history)
	var lastDate *time.Time
	if len(history) > 0 {
		lastDate = &history[0].Date
	}

	if err := s.store.UpdateProductDerived(ctx, productID, lifespan, lastDate); err != nil {
		util.PurchaseMutationsFailedTotal.WithLabelValues("recompute_failed").Inc()
		return fmt.Errorf("failed to write derived fields: %w", err)
	}

	util.RecomputeRunsTotal.Inc()
	return nil
}

func (s *PurchaseService) lockProduct(ctx context.Context, productID string) (func(), error) {
	ok, err := s.redis.AcquireProductLock(ctx, productID, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire product lock: %w", err)
	}
	if !ok {
		util.PurchaseMutationsFailedTotal.WithLabelValues("locked").Inc()
		return nil, ErrLocked
	}
	return func() {
		if err := s.redis.ReleaseProductLock(ctx, productID); err != nil {
			s.logger.Error("Failed to release product lock",
				zap.String("product_id", productID),
				zap.Error(err))
		}
	}, nil
}

func (s *PurchaseService) invalidateCache(ctx context.Context) {
	if err := s.redis.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
