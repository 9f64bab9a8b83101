package domain

import "time"

const (
	EventOrderFulfilled = "OrderFulfilled"
	EventStockBelowZero = "StockBelowZero"
)

type FulfilledItem struct {
	BookID    string `json:"book_id"`
	Quantity  int    `json:"quantity"`
	Remaining int    `json:"remaining"`
}

type OrderFulfilled struct {
	OrderID     string          `json:"order_id"`
	Items       []FulfilledItem `json:"items"`
	FulfilledAt time.Time       `json:"fulfilled_at"`
}

// StockBelowZero is the alarm raised when a decrement drives a book's stock
// negative. The decrement stands; this is an allocation-visibility signal
// for manual follow-up, not a rollback trigger.
type StockBelowZero struct {
	OrderID   string `json:"order_id"`
	BookID    string `json:"book_id"`
	Remaining int    `json:"remaining"`
}
