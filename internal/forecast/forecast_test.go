package forecast

import (
	"testing"
	"time"

	"restock-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func purchaseOn(t time.Time) models.Purchase {
	return models.Purchase{ID: "p", ProductID: "prod", Date: t, Quantity: 1, Unit: "kg"}
}

func TestEstimateLifespanDaysInsufficientData(t *testing.T) {
	assert.Equal(t, 0, EstimateLifespanDays(nil))
	assert.Equal(t, 0, EstimateLifespanDays([]models.Purchase{
		purchaseOn(date(2024, 1, 1)),
	}))
}

func TestEstimateLifespanDaysSimpleAverage(t *testing.T) {
	purchases := []models.Purchase{
		purchaseOn(date(2024, 1, 1)),
		purchaseOn(date(2024, 1, 11)),
		purchaseOn(date(2024, 1, 21)),
	}
	assert.Equal(t, 10, EstimateLifespanDays(purchases))
}

func TestEstimateLifespanDaysUnorderedInput(t *testing.T) {
	purchases := []models.Purchase{
		purchaseOn(date(2024, 1, 21)),
		purchaseOn(date(2024, 1, 1)),
		purchaseOn(date(2024, 1, 11)),
	}
	assert.Equal(t, 10, EstimateLifespanDays(purchases))
}

func TestEstimateLifespanDaysIgnoresSameDayDuplicates(t *testing.T) {
	purchases := []models.Purchase{
		purchaseOn(date(2024, 1, 1)),
		purchaseOn(date(2024, 1, 1)),
		purchaseOn(date(2024, 1, 11)),
	}
	// the zero-day gap contributes nothing, so the result is 10, not 5
	assert.Equal(t, 10, EstimateLifespanDays(purchases))
}

func TestEstimateLifespanDaysAllSameDay(t *testing.T) {
	purchases := []models.Purchase{
		purchaseOn(date(2024, 1, 1)),
		purchaseOn(date(2024, 1, 1)),
		purchaseOn(date(2024, 1, 1)),
	}
	assert.Equal(t, 0, EstimateLifespanDays(purchases))
}

func TestEstimateLifespanDaysRoundsHalfAwayFromZero(t *testing.T) {
	// gaps of 10 and 11 days average to 10.5, which rounds up to 11
	purchases := []models.Purchase{
		purchaseOn(date(2024, 1, 1)),
		purchaseOn(date(2024, 1, 11)),
		purchaseOn(date(2024, 1, 22)),
	}
	assert.Equal(t, 11, EstimateLifespanDays(purchases))
}

func TestClassifyUnknownWithoutLifespan(t *testing.T) {
	last := purchaseOn(date(2024, 1, 1))
	lastDate := date(2024, 1, 1)
	product := models.Product{
		ID:                  "prod",
		Name:                "Rice",
		AverageLifespanDays: 0,
		LastPurchaseDate:    &lastDate,
	}

	result := Classify(product, &last, time.Now())

	assert.Equal(t, models.UrgencyUnknown, result.UrgencyLevel)
	assert.Nil(t, result.DaysRemaining)
	assert.Nil(t, result.PredictedRunoutDate)
	require.NotNil(t, result.LastQuantityPurchased)
	assert.Equal(t, 1.0, *result.LastQuantityPurchased)
}

func TestClassifyUnknownWithoutPurchase(t *testing.T) {
	product := models.Product{ID: "prod", Name: "Rice", AverageLifespanDays: 10}

	result := Classify(product, nil, time.Now())

	assert.Equal(t, models.UrgencyUnknown, result.UrgencyLevel)
	assert.Nil(t, result.LastQuantityPurchased)
}

func TestClassifyTierBoundaries(t *testing.T) {
	now := date(2024, 6, 15)

	cases := []struct {
		name     string
		lifespan int
		expected models.UrgencyLevel
		days     int
	}{
		{"runout tomorrow is critical", 10, models.UrgencyCritical, 1},
		{"two days out is high", 11, models.UrgencyHigh, 2},
		{"three days out is high", 12, models.UrgencyHigh, 3},
		{"seven days out is medium", 16, models.UrgencyMedium, 7},
		{"eight days out is low", 17, models.UrgencyLow, 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lastDate := now.AddDate(0, 0, -9)
			last := purchaseOn(lastDate)
			product := models.Product{
				ID:                  "prod",
				AverageLifespanDays: tc.lifespan,
				LastPurchaseDate:    &lastDate,
			}

			result := Classify(product, &last, now)

			require.NotNil(t, result.DaysRemaining)
			assert.Equal(t, tc.days, *result.DaysRemaining)
			assert.Equal(t, tc.expected, result.UrgencyLevel)
		})
	}
}

func TestClassifyOverdueIsCritical(t *testing.T) {
	now := date(2024, 6, 15)
	lastDate := now.AddDate(0, 0, -20)
	last := purchaseOn(lastDate)
	product := models.Product{
		ID:                  "prod",
		AverageLifespanDays: 10,
		LastPurchaseDate:    &lastDate,
	}

	result := Classify(product, &last, now)

	require.NotNil(t, result.DaysRemaining)
	assert.Equal(t, -10, *result.DaysRemaining)
	assert.Equal(t, models.UrgencyCritical, result.UrgencyLevel)
}

func TestClassifyUsesCalendarDays(t *testing.T) {
	// evaluation late in the day must not shave a day off the forecast
	now := time.Date(2024, 6, 15, 23, 30, 0, 0, time.UTC)
	lastDate := date(2024, 6, 6)
	last := purchaseOn(lastDate)
	product := models.Product{
		ID:                  "prod",
		AverageLifespanDays: 10,
		LastPurchaseDate:    &lastDate,
	}

	result := Classify(product, &last, now)

	require.NotNil(t, result.DaysRemaining)
	assert.Equal(t, 1, *result.DaysRemaining)
	assert.Equal(t, models.UrgencyCritical, result.UrgencyLevel)
}

func withUrgency(id string, level models.UrgencyLevel, days *int) models.ProductWithUrgency {
	return models.ProductWithUrgency{
		Product:       models.Product{ID: id},
		UrgencyLevel:  level,
		DaysRemaining: days,
	}
}

func intPtr(v int) *int { return &v }

func TestRankOrdersByTierThenDaysRemaining(t *testing.T) {
	products := []models.ProductWithUrgency{
		withUrgency("low", models.UrgencyLow, intPtr(14)),
		withUrgency("unknown", models.UrgencyUnknown, nil),
		withUrgency("high", models.UrgencyHigh, intPtr(3)),
		withUrgency("critical-far", models.UrgencyCritical, intPtr(1)),
		withUrgency("critical-overdue", models.UrgencyCritical, intPtr(-2)),
		withUrgency("medium", models.UrgencyMedium, intPtr(6)),
	}

	Rank(products)

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"critical-overdue", "critical-far", "high", "medium", "low", "unknown"}, ids)
}

func TestRankIsStableForEqualKeys(t *testing.T) {
	products := []models.ProductWithUrgency{
		withUrgency("first", models.UrgencyCritical, intPtr(1)),
		withUrgency("second", models.UrgencyCritical, intPtr(1)),
		withUrgency("third", models.UrgencyUnknown, nil),
		withUrgency("fourth", models.UrgencyUnknown, nil),
	}

	Rank(products)

	assert.Equal(t, "first", products[0].ID)
	assert.Equal(t, "second", products[1].ID)
	assert.Equal(t, "third", products[2].ID)
	assert.Equal(t, "fourth", products[3].ID)
}
