package stats

import (
	"fmt"
	"sort"
	"time"

	"restock-service/internal/models"
)

// Period selects the granularity of the spending chart
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Window sizes per granularity, in buckets ending at "now"
const (
	dayWindow   = 7
	weekWindow  = 4
	monthWindow = 6
	yearWindow  = 5
)

// ParsePeriod validates a period string from the API
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid period: %q", s)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeek truncates to the preceding Sunday
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// addMonths shifts by whole calendar months without end-of-month clamping
func addMonths(t time.Time, n int) time.Time {
	return startOfMonth(t).AddDate(0, n, 0)
}

// bucketKey aligns a purchase date to its bucket under the given granularity
func bucketKey(period Period, t time.Time) string {
	switch period {
	case PeriodDay:
		return t.Format("2006-01-02")
	case PeriodWeek:
		return startOfWeek(t).Format("2006-01-02")
	case PeriodMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006")
	}
}

// SpendingSeries buckets purchase spend into a fixed rolling window of
// calendar-aligned slots ending at now, one value per label, oldest first.
// Every slot is pre-seeded to zero, so the series length is always the
// window size. Purchases without a price, or whose aligned bucket falls
// outside the window, contribute nothing.
func SpendingSeries(history []models.Purchase, period Period, now time.Time) (labels []string, values []float64) {
	keys := make([]string, 0, dayWindow)
	index := make(map[string]int)

	seed := func(key, label string) {
		index[key] = len(keys)
		keys = append(keys, key)
		labels = append(labels, label)
	}

	switch period {
	case PeriodDay:
		for i := dayWindow - 1; i >= 0; i-- {
			d := now.AddDate(0, 0, -i)
			seed(bucketKey(period, d), d.Format("02/01"))
		}
	case PeriodWeek:
		for i := weekWindow - 1; i >= 0; i-- {
			d := now.AddDate(0, 0, -i*7)
			seed(bucketKey(period, d), fmt.Sprintf("W%d", weekWindow-i))
		}
	case PeriodMonth:
		for i := monthWindow - 1; i >= 0; i-- {
			d := addMonths(now, -i)
			seed(bucketKey(period, d), d.Format("Jan"))
		}
	case PeriodYear:
		for i := yearWindow - 1; i >= 0; i-- {
			d := now.AddDate(-i, 0, 0)
			seed(bucketKey(period, d), d.Format("2006"))
		}
	}

	values = make([]float64, len(keys))
	for _, p := range history {
		if p.Price == nil {
			continue
		}
		if i, ok := index[bucketKey(period, p.Date)]; ok {
			values[i] += *p.Price
		}
	}

	return labels, values
}

// ProductCount is one entry of the purchase-frequency ranking
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopProducts counts purchases per product and returns the n most
// frequently bought, resolved to display names. Products with equal counts
// keep their first-purchase order; ids without a matching product get a
// fallback name.
func TopProducts(history []models.Purchase, products []models.Product, n int) []ProductCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, p := range history {
		if _, seen := counts[p.ProductID]; !seen {
			order = append(order, p.ProductID)
		}
		counts[p.ProductID]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	result := make([]ProductCount, 0, len(order))
	for _, id := range order {
		name, ok := names[id]
		if !ok {
			name = "Unknown"
		}
		result = append(result, ProductCount{Name: name, Count: counts[id]})
	}
	return result
}

// MonthlyTotal is the spend total for one calendar month
type MonthlyTotal struct {
	Month time.Time `json:"month"`
	Label string    `json:"label"`
	Total float64   `json:"total"`
}

// MonthlySpend sums priced purchases per calendar month across the whole
// history and returns the months most recent first. Ordering compares the
// calendar month itself, never the label text.
func MonthlySpend(history []models.Purchase) []MonthlyTotal {
	totals := make(map[time.Time]float64)
	for _, p := range history {
		if p.Price == nil {
			continue
		}
		totals[startOfMonth(p.Date)] += *p.Price
	}

	result := make([]MonthlyTotal, 0, len(totals))
	for month, total := range totals {
		result = append(result, MonthlyTotal{
			Month: month,
			Label: month.Format("January 2006"),
			Total: total,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month.After(result[j].Month)
	})
	return result
}
