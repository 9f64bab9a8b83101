package domain

import (
	"errors"
	"time"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrBookNotFound  = errors.New("book not found")
)

type FulfillmentType string

const (
	FulfillmentShipping FulfillmentType = "shipping"
	FulfillmentPickup   FulfillmentType = "pickup"
)

// Order is the persisted order as the fulfillment path sees it. Items is the
// raw cart payload exactly as stored; it is normalized at the boundary via
// FromCartPayload, never probed downstream.
type Order struct {
	ID              string
	Items           []map[string]any
	FulfillmentType FulfillmentType
	CreatedAt       time.Time
}

// OrderItem is the canonical line item derived per reconciliation call.
// BookID is empty when the source carried no usable identifier; such items
// are skipped during decrementing.
type OrderItem struct {
	BookID   string
	Title    string
	Quantity int
	Price    float64
}

type Book struct {
	ID    string
	Title string
	Stock int
}

// PaymentMetadata is the provider-side item encoding: comma-separated book
// ids and quantities, positionally matched.
type PaymentMetadata struct {
	BookIDs    string
	Quantities string
}
