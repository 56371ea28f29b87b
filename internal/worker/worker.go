package worker

import (
	"context"
	"fmt"
	"time"

	"restock-service/internal/broker"
	"restock-service/internal/forecast"
	"restock-service/internal/models"
	"restock-service/internal/store"
	"restock-service/internal/util"

	"go.uber.org/zap"
)

// AlertWorker consumes purchase events and re-evaluates the affected
// product's runout forecast, raising a restock alert when the product is
// critical or already overdue
type AlertWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewAlertWorker creates a new restock alert worker
func NewAlertWorker(consumer *broker.Consumer, store *store.Store) *AlertWorker {
	w := &AlertWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnPurchaseRecorded(func(ctx context.Context, event *models.PurchaseRecordedEvent) error {
		return w.reevaluate(ctx, event.ProductID)
	})
	eventHandler.OnPurchaseUpdated(func(ctx context.Context, event *models.PurchaseUpdatedEvent) error {
		return w.reevaluate(ctx, event.ProductID)
	})
	eventHandler.OnPurchaseDeleted(func(ctx context.Context, event *models.PurchaseDeletedEvent) error {
		return w.reevaluate(ctx, event.ProductID)
	})
	w.eventHandler = eventHandler

	return w
}

// Start begins consuming purchase events
func (w *AlertWorker) Start(ctx context.Context) error {
	w.logger.Info("Restock alert worker starting")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop closes the underlying consumer
func (w *AlertWorker) Stop() {
	if err := w.consumer.Close(); err != nil {
		w.logger.Error("Failed to close consumer", zap.Error(err))
	}
}

// reevaluate reloads the product and logs an alert when it needs restocking
func (w *AlertWorker) reevaluate(ctx context.Context, productID string) error {
	product, err := w.store.GetProductByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	if product == nil {
		// product deleted between event and processing, nothing to evaluate
		return nil
	}

	history, err := w.store.GetPurchasesByProductID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load purchases for product %s: %w", productID, err)
	}

	var lastPurchase *models.Purchase
	if len(history) > 0 {
		lastPurchase = &history[0]
	}

	result := forecast.Classify(*product, lastPurchase, time.Now())
	if result.UrgencyLevel != models.UrgencyCritical && result.UrgencyLevel != models.UrgencyHigh {
		return nil
	}

	util.RestockAlertsTotal.WithLabelValues(string(result.UrgencyLevel)).Inc()

	fields := []zap.Field{
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("urgency", string(result.UrgencyLevel)),
	}
	if result.DaysRemaining != nil {
		fields = append(fields, zap.Int("days_remaining", *result.DaysRemaining))
	}
	w.logger.Warn("Restock alert", fields...)
	return nil
}
