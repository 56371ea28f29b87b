package forecast

import (
	"math"
	"sort"
	"time"

	"restock-service/internal/models"
)

// dateOnly strips the time component, keeping the civil calendar date
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the calendar-day difference to - from
func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}

// EstimateLifespanDays computes the average number of days between
// consecutive purchases, rounded half away from zero. Fewer than two
// purchases, or a history with no strictly positive interval (e.g. all
// purchases on the same day), yields 0.
func EstimateLifespanDays(purchases []models.Purchase) int {
	if len(purchases) < 2 {
		return 0
	}

	sorted := make([]models.Purchase, len(purchases))
	copy(sorted, purchases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	totalInterval := 0
	intervalCount := 0
	for i := 1; i < len(sorted); i++ {
		interval := daysBetween(sorted[i-1].Date, sorted[i].Date)
		if interval > 0 {
			totalInterval += interval
			intervalCount++
		}
	}

	if intervalCount == 0 {
		return 0
	}
	return int(math.Round(float64(totalInterval) / float64(intervalCount)))
}

// Classify computes the runout forecast and urgency tier for a product
// given its most recent purchase. now is the evaluation time; callers pass
// the current clock so classification stays live rather than cached.
func Classify(product models.Product, lastPurchase *models.Purchase, now time.Time) models.ProductWithUrgency {
	result := models.ProductWithUrgency{
		Product:      product,
		UrgencyLevel: models.UrgencyUnknown,
	}
	if lastPurchase != nil {
		qty := lastPurchase.Quantity
		result.LastQuantityPurchased = &qty
	}

	if product.LastPurchaseDate == nil || lastPurchase == nil || product.AverageLifespanDays == 0 {
		return result
	}

	runout := dateOnly(*product.LastPurchaseDate).AddDate(0, 0, product.AverageLifespanDays)
	daysRemaining := daysBetween(now, runout)

	result.PredictedRunoutDate = &runout
	result.DaysRemaining = &daysRemaining

	switch {
	case daysRemaining <= 1:
		result.UrgencyLevel = models.UrgencyCritical
	case daysRemaining <= 3:
		result.UrgencyLevel = models.UrgencyHigh
	case daysRemaining <= 7:
		result.UrgencyLevel = models.UrgencyMedium
	default:
		result.UrgencyLevel = models.UrgencyLow
	}

	return result
}

// Rank orders products most urgent first: by urgency tier, then by days
// remaining within the tier. The sort is stable so equal entries keep
// their input order.
func Rank(products []models.ProductWithUrgency) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.UrgencyLevel.Rank() != b.UrgencyLevel.Rank() {
			return a.UrgencyLevel.Rank() < b.UrgencyLevel.Rank()
		}
		if a.DaysRemaining != nil && b.DaysRemaining != nil {
			return *a.DaysRemaining < *b.DaysRemaining
		}
		return false
	})
}
