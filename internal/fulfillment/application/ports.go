package application

import (
	"context"

	"github.com/inkwellbooks/fulfillment/internal/fulfillment/domain"
)

type BookStore interface {
	// DecrementStock atomically reduces the book's stock by qty and returns
	// the post-decrement value in the same operation.
	DecrementStock(ctx context.Context, bookID, orderID string, qty int) (remaining int, err error)
}

type OrderStore interface {
	Get(ctx context.Context, id string) (domain.Order, error)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, tag string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}
