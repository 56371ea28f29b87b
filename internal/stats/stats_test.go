package stats

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

func pricedPurchase(productID string, d time.Time, price float64) models.Purchase {
	return models.Purchase{ID: "p", ProductID: productID, Date: d, Quantity: 1, Unit: "kg", Price: &price}
}

func unpricedPurchase(productID string, d time.Time) models.Purchase {
	return models.Purchase{ID: "p", ProductID: productID, Date: d, Quantity: 1, Unit: "kg"}
}

func TestParsePeriod(t *testing.T) {
	for _, valid := range []string{"day", "week", "month", "year"} {
		p, err := ParsePeriod(valid)
		require.NoError(t, err)
		assert.Equal(t, Period(valid), p)
	}
	_, err := ParsePeriod("quarter")
	assert.Error(t, err)
}

func TestSpendingSeriesDayZeroFill(t *testing.T) {
	labels, values := SpendingSeries(nil, PeriodDay, date(2024, 6, 15))

	require.Len(t, labels, 7)
	require.Len(t, values, 7)
	for _, v := range values {
		assert.Zero(t, v)
	}
	assert.Equal(t, "09/06", labels[0])
	assert.Equal(t, "15/06", labels[6])
}

func TestSpendingSeriesDaySums(t *testing.T) {
	now := date(2024, 6, 15)
	history := []models.Purchase{
		pricedPurchase("rice", date(2024, 6, 15), 50),
		pricedPurchase("rice", date(2024, 6, 15), 25),
		pricedPurchase("oil", date(2024, 6, 9), 30),
		pricedPurchase("oil", date(2024, 6, 8), 999), // day before the window
		unpricedPurchase("soap", date(2024, 6, 15)),  // no price, ignored
	}

	_, values := SpendingSeries(history, PeriodDay, now)

	assert.Equal(t, 30.0, values[0])
	assert.Equal(t, 75.0, values[6])
	assert.Equal(t, 105.0, sum(values))
}

func TestSpendingSeriesMonthWindowExcludesOldPurchases(t *testing.T) {
	now := date(2024, 8, 20)
	history := []models.Purchase{
		pricedPurchase("rice", date(2023, 12, 5), 500), // 8 months ago
		pricedPurchase("rice", date(2024, 3, 5), 40),   // oldest in-window month
		pricedPurchase("oil", date(2024, 8, 1), 60),
	}

	labels, values := SpendingSeries(history, PeriodMonth, now)

	require.Len(t, labels, 6)
	assert.Equal(t, []string{"Mar", "Apr", "May", "Jun", "Jul", "Aug"}, labels)
	assert.Equal(t, 40.0, values[0])
	assert.Equal(t, 60.0, values[5])
	assert.Equal(t, 100.0, sum(values))
}

func TestSpendingSeriesMonthBucketsByCalendarMonth(t *testing.T) {
	// now late in a long month must not misalign purchases from short months
	now := date(2024, 7, 31)
	history := []models.Purchase{
		pricedPurchase("rice", date(2024, 2, 29), 10),
		pricedPurchase("rice", date(2024, 6, 1), 20),
		pricedPurchase("rice", date(2024, 6, 30), 5),
	}

	labels, values := SpendingSeries(history, PeriodMonth, now)

	assert.Equal(t, []string{"Feb", "Mar", "Apr", "May", "Jun", "Jul"}, labels)
	assert.Equal(t, 10.0, values[0])
	assert.Equal(t, 25.0, values[4])
}

func TestSpendingSeriesWeekAlignsToStartOfWeek(t *testing.T) {
	// 2024-06-15 is a Saturday; its week starts Sunday 2024-06-09
	now := date(2024, 6, 15)
	history := []models.Purchase{
		pricedPurchase("rice", date(2024, 6, 9), 10),  // same week, Sunday
		pricedPurchase("rice", date(2024, 6, 8), 20),  // Saturday, previous week
		pricedPurchase("rice", date(2024, 5, 10), 99), // before the window
	}

	labels, values := SpendingSeries(history, PeriodWeek, now)

	assert.Equal(t, []string{"W1", "W2", "W3", "W4"}, labels)
	assert.Equal(t, 20.0, values[2])
	assert.Equal(t, 10.0, values[3])
	assert.Equal(t, 30.0, sum(values))
}

func TestSpendingSeriesYear(t *testing.T) {
	now := date(2024, 6, 15)
	history := []models.Purchase{
		pricedPurchase("rice", date(2020, 1, 1), 10),
		pricedPurchase("rice", date(2024, 12, 31), 40),
		pricedPurchase("rice", date(2019, 12, 31), 99), // before the window
	}

	labels, values := SpendingSeries(history, PeriodYear, now)

	assert.Equal(t, []string{"2020", "2021", "2022", "2023", "2024"}, labels)
	assert.Equal(t, 10.0, values[0])
	assert.Equal(t, 40.0, values[4])
	assert.Equal(t, 50.0, sum(values))
}

func TestTopProductsOrdersByCountDescending(t *testing.T) {
	history := []models.Purchase{
		unpricedPurchase("oil", date(2024, 1, 1)),
		unpricedPurchase("rice", date(2024, 1, 2)),
		unpricedPurchase("rice", date(2024, 1, 3)),
		unpricedPurchase("rice", date(2024, 1, 4)),
		unpricedPurchase("oil", date(2024, 1, 5)),
		unpricedPurchase("soap", date(2024, 1, 6)),
	}
	products := []models.Product{
		{ID: "rice", Name: "Rice"},
		{ID: "oil", Name: "Cooking Oil"},
		{ID: "soap", Name: "Soap"},
	}

	top := TopProducts(history, products, 5)

	require.Len(t, top, 3)
	assert.Equal(t, ProductCount{Name: "Rice", Count: 3}, top[0])
	assert.Equal(t, ProductCount{Name: "Cooking Oil", Count: 2}, top[1])
	assert.Equal(t, ProductCount{Name: "Soap", Count: 1}, top[2])
}

func TestTopProductsLimitAndFallbackName(t *testing.T) {
	history := make([]models.Purchase, 0)
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		for j := 0; j <= i; j++ {
			history = append(history, unpricedPurchase(id, date(2024, 1, 1+j)))
		}
	}

	top := TopProducts(history, nil, 5)

	require.Len(t, top, 5)
	assert.Equal(t, 6, top[0].Count)
	assert.Equal(t, 2, top[4].Count)
	for _, entry := range top {
		assert.Equal(t, "Unknown", entry.Name)
	}
}

func TestTopProductsTieBreakIsFirstEncountered(t *testing.T) {
	history := []models.Purchase{
		unpricedPurchase("second", date(2024, 1, 2)),
		unpricedPurchase("first", date(2024, 1, 1)),
		unpricedPurchase("second", date(2024, 1, 3)),
		unpricedPurchase("first", date(2024, 1, 4)),
	}
	products := []models.Product{
		{ID: "first", Name: "First"},
		{ID: "second", Name: "Second"},
	}

	top := TopProducts(history, products, 5)

	require.Len(t, top, 2)
	assert.Equal(t, "Second", top[0].Name)
	assert.Equal(t, "First", top[1].Name)
}

func TestMonthlySpendSortsByCalendarMonthDescending(t *testing.T) {
	history := []models.Purchase{
		pricedPurchase("rice", date(2024, 3, 10), 30),
		pricedPurchase("rice", date(2024, 1, 10), 10),
		pricedPurchase("rice", date(2024, 2, 10), 20),
		pricedPurchase("rice", date(2024, 2, 25), 5),
		unpricedPurchase("rice", date(2024, 4, 1)),
	}

	totals := MonthlySpend(history)

	require.Len(t, totals, 3)
	// March > February > January by date, even though the labels would sort
	// differently as strings
	assert.Equal(t, "March 2024", totals[0].Label)
	assert.Equal(t, "February 2024", totals[1].Label)
	assert.Equal(t, "January 2024", totals[2].Label)
	assert.Equal(t, 30.0, totals[0].Total)
	assert.Equal(t, 25.0, totals[1].Total)
	assert.Equal(t, 10.0, totals[2].Total)
}

func TestMonthlySpendSpansYears(t *testing.T) {
	history := []models.Purchase{
		pricedPurchase("rice", date(2023, 12, 31), 10),
		pricedPurchase("rice", date(2024, 1, 1), 20),
	}

	totals := MonthlySpend(history)

	require.Len(t, totals, 2)
	assert.Equal(t, "January 2024", totals[0].Label)
	assert.Equal(t, "December 2023", totals[1].Label)
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
