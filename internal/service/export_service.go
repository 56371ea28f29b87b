package service

import (
	"context"
	"fmt"
	"time"

	"restock-service/internal/broker"
	"restock-service/internal/forecast"
	"restock-service/internal/models"
	"restock-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotStore is the storage surface the export/import boundary needs
type SnapshotStore interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetPurchases(ctx context.Context) ([]models.Purchase, error)
	ReplaceAll(ctx context.Context, products []models.Product, history []models.Purchase) error
}

// ExportService handles the versioned snapshot boundary. Import replaces
// all existing data wholesale, it is not a merge.
type ExportService struct {
	store          SnapshotStore
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(store SnapshotStore, eventPublisher *broker.EventPublisher) *ExportService {
	return &ExportService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// Export builds a snapshot of all products and purchase history
func (s *ExportService) Export(ctx context.Context) (*models.Snapshot, error) {
	ctx, span := util.StartSpan(ctx, "ExportService.Export")
	defer span.End()

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	history, err := s.store.GetPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase history: %w", err)
	}

	util.SnapshotExportsTotal.Inc()
	return &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: time.Now(),
		Products:   products,
		History:    history,
	}, nil
}

// Import replaces all data with the snapshot's contents. The version check
// runs before any destructive write, so a rejected snapshot leaves the
// existing data untouched. Derived product fields are recomputed from the
// imported history rather than trusted from the snapshot.
func (s *ExportService) Import(ctx context.Context, snapshot *models.Snapshot) error {
	ctx, span := util.StartSpan(ctx, "ExportService.Import")
	defer span.End()

	if snapshot.Version != models.SnapshotVersion {
		util.SnapshotImportsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, snapshot.Version)
	}

	products := make([]models.Product, len(snapshot.Products))
	copy(products, snapshot.Products)

	byProduct := make(map[string][]models.Purchase)
	for _, p := range snapshot.History {
		byProduct[p.ProductID] = append(byProduct[p.ProductID], p)
	}

	for i := range products {
		history := byProduct[products[i].ID]
		products[i].AverageLifespanDays = forecast.EstimateLifespanDays(history)
		products[i].LastPurchaseDate = latestPurchaseDate(history)
	}

	if err := s.store.ReplaceAll(ctx, products, snapshot.History); err != nil {
		util.SnapshotImportsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to replace data: %w", err)
	}

	util.SnapshotImportsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Snapshot imported",
		zap.Int("products", len(products)),
		zap.Int("purchases", len(snapshot.History)))

	if s.eventPublisher != nil {
		event := &models.DataImportedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeDataImported,
				Timestamp: time.Now(),
			},
			ProductCount:  len(products),
			PurchaseCount: len(snapshot.History),
		}
		if err := s.eventPublisher.PublishDataImported(ctx, event); err != nil {
			s.logger.Error("Failed to publish DataImported event", zap.Error(err))
		}
	}

	return nil
}

func latestPurchaseDate(history []models.Purchase) *time.Time {
	var latest *time.Time
	for i := range history {
		if latest == nil || history[i].Date.After(*latest) {
			latest = &history[i].Date
		}
	}
	return latest
}
