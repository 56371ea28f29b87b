package models

import "time"

// Product represents a recurring consumable tracked by the household
type Product struct {
	ID                  string     `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Category            string     `db:"category" json:"category"`
	DefaultUnit         string     `db:"default_unit" json:"default_unit"`
	PackagingSize       float64    `db:"packaging_size" json:"packaging_size"`
	AverageLifespanDays int        `db:"average_lifespan_days" json:"average_lifespan_days"`
	LastPurchaseDate    *time.Time `db:"last_purchase_date" json:"last_purchase_date,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// Purchase represents one purchase event for a product
type Purchase struct {
	ID        string    `db:"id" json:"id"`
	ProductID string    `db:"product_id" json:"product_id"`
	Date      time.Time `db:"date" json:"date"`
	Quantity  float64   `db:"quantity" json:"quantity"`
	Unit      string    `db:"unit" json:"unit"`
	Price     *float64  `db:"price" json:"price,omitempty"`
}

// UrgencyLevel is the closed set of restock urgency tiers
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyLow      UrgencyLevel = "low"
	UrgencyUnknown  UrgencyLevel = "unknown"
)

// urgencyRank defines the total order used for sorting, most urgent first
var urgencyRank = map[UrgencyLevel]int{
	UrgencyCritical: 0,
	UrgencyHigh:     1,
	UrgencyMedium:   2,
	UrgencyLow:      3,
	UrgencyUnknown:  4,
}

// Rank returns the sort ordinal for the urgency level
func (u UrgencyLevel) Rank() int {
	if r, ok := urgencyRank[u]; ok {
		return r
	}
	return urgencyRank[UrgencyUnknown]
}

// ProductWithUrgency is a read-only projection of a product enriched with
// its runout forecast. Computed on every list load, never persisted.
type ProductWithUrgency struct {
	Product
	PredictedRunoutDate   *time.Time   `json:"predicted_runout_date,omitempty"`
	DaysRemaining         *int         `json:"days_remaining,omitempty"`
	UrgencyLevel          UrgencyLevel `json:"urgency_level"`
	LastQuantityPurchased *float64     `json:"last_quantity_purchased,omitempty"`
}

// Snapshot is the versioned export/import payload
type Snapshot struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Products   []Product  `json:"products"`
	History    []Purchase `json:"history"`
}

// SnapshotVersion is the only snapshot version this build understands
const SnapshotVersion = 1
