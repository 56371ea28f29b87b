package service

import (
	"context"
	"testing"
	"time"

	"restock-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory SnapshotStore for exercising the export/import
// boundary without a database
type memStore struct {
	products []models.Product
	history  []models.Purchase
}

func (m *memStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	return m.products, nil
}

func (m *memStore) GetPurchases(ctx context.Context) ([]models.Purchase, error) {
	return m.history, nil
}

func (m *memStore) ReplaceAll(ctx context.Context, products []models.Product, history []models.Purchase) error {
	m.products = products
	m.history = history
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedStore() *memStore {
	lastRice := date(2024, 5, 21)
	price := 50.0
	return &memStore{
		products: []models.Product{
			{
				ID:                  "rice",
				Name:                "Rice",
				Category:            "Staples",
				DefaultUnit:         "kg",
				PackagingSize:       5,
				AverageLifespanDays: 10,
				LastPurchaseDate:    &lastRice,
				CreatedAt:           date(2024, 1, 1),
			},
			{
				ID:            "soap",
				Name:          "Soap",
				Category:      "Cleaning",
				DefaultUnit:   "bar",
				PackagingSize: 1,
				CreatedAt:     date(2024, 2, 1),
			},
		},
		history: []models.Purchase{
			{ID: "p1", ProductID: "rice", Date: date(2024, 5, 1), Quantity: 5, Unit: "kg", Price: &price},
			{ID: "p2", ProductID: "rice", Date: date(2024, 5, 11), Quantity: 5, Unit: "kg"},
			{ID: "p3", ProductID: "rice", Date: date(2024, 5, 21), Quantity: 5, Unit: "kg", Price: &price},
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := seedStore()

	snapshot, err := NewExportService(source, nil).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SnapshotVersion, snapshot.Version)
	assert.False(t, snapshot.ExportedAt.IsZero())

	target := &memStore{}
	require.NoError(t, NewExportService(target, nil).Import(ctx, snapshot))

	byID := make(map[string]models.Product)
	for _, p := range target.products {
		byID[p.ID] = p
	}
	require.Len(t, byID, 2)
	for _, want := range source.products {
		got, ok := byID[want.ID]
		require.True(t, ok, "product %s missing after import", want.ID)
		assert.Equal(t, want, got)
	}

	historyByID := make(map[string]models.Purchase)
	for _, p := range target.history {
		historyByID[p.ID] = p
	}
	require.Len(t, historyByID, 3)
	for _, want := range source.history {
		assert.Equal(t, want, historyByID[want.ID])
	}
}

func TestImportRecomputesDerivedFields(t *testing.T) {
	ctx := context.Background()
	source := seedStore()

	snapshot, err := NewExportService(source, nil).Export(ctx)
	require.NoError(t, err)

	// tamper with the cached fields; import must not trust them
	snapshot.Products[0].AverageLifespanDays = 999
	snapshot.Products[0].LastPurchaseDate = nil

	target := &memStore{}
	require.NoError(t, NewExportService(target, nil).Import(ctx, snapshot))

	var rice models.Product
	for _, p := range target.products {
		if p.ID == "rice" {
			rice = p
		}
	}
	assert.Equal(t, 10, rice.AverageLifespanDays)
	require.NotNil(t, rice.LastPurchaseDate)
	assert.Equal(t, date(2024, 5, 21), *rice.LastPurchaseDate)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	ctx := context.Background()
	target := seedStore()
	originalProducts := len(target.products)
	originalHistory := len(target.history)

	snapshot := &models.Snapshot{
		Version:    2,
		ExportedAt: time.Now(),
	}

	err := NewExportService(target, nil).Import(ctx, snapshot)
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	// rejection must happen before any destructive write
	assert.Len(t, target.products, originalProducts)
	assert.Len(t, target.history, originalHistory)
}
