package models

import "time"

// Event types
const (
	EventTypePurchaseRecorded = "PURCHASE_RECORDED"
	EventTypePurchaseUpdated  = "PURCHASE_UPDATED"
	EventTypePurchaseDeleted  = "PURCHASE_DELETED"
	EventTypeProductDeleted   = "PRODUCT_DELETED"
	EventTypeDataImported     = "DATA_IMPORTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PurchaseRecordedEvent published when a new purchase is saved
type PurchaseRecordedEvent struct {
	BaseEvent
	PurchaseID string    `json:"purchase_id"`
	ProductID  string    `json:"product_id"`
	Date       time.Time `json:"date"`
	Quantity   float64   `json:"quantity"`
	Price      *float64  `json:"price,omitempty"`
}

// PurchaseUpdatedEvent published when a purchase is edited
type PurchaseUpdatedEvent struct {
	BaseEvent
	PurchaseID string    `json:"purchase_id"`
	ProductID  string    `json:"product_id"`
	Date       time.Time `json:"date"`
	Quantity   float64   `json:"quantity"`
	Price      *float64  `json:"price,omitempty"`
}

// PurchaseDeletedEvent published when a purchase is removed
type PurchaseDeletedEvent struct {
	BaseEvent
	PurchaseID string `json:"purchase_id"`
	ProductID  string `json:"product_id"`
}

// ProductDeletedEvent published when a product and its history are removed
type ProductDeletedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
}

// DataImportedEvent published after a snapshot import replaces all data
type DataImportedEvent struct {
	BaseEvent
	ProductCount  int `json:"product_count"`
	PurchaseCount int `json:"purchase_count"`
}
