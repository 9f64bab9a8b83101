package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/inkwellbooks/fulfillment/internal/fulfillment/domain"
	"github.com/inkwellbooks/fulfillment/pkg/idempotency"
)

// ErrOrderTooStale rejects the success-page fallback for orders past the
// freshness window, so the path cannot be replayed long after the fact.
var ErrOrderTooStale = errors.New("order too old to fulfill")

// BooksCacheTag identifies book data to downstream catalog caches.
const BooksCacheTag = "books"

const DefaultMaxOrderAge = 24 * time.Hour

type Source string

const (
	SourceWebhook     Source = "webhook"
	SourceSuccessPage Source = "success_page"
)

type Result string

const (
	ResultFulfilled Result = "fulfilled"
	ResultSkipped   Result = "skipped"
)

// Event is the single fulfillment entry point's input. Both triggers build
// one: the payment webhook carries provider metadata, the success-page
// fallback carries only the order id and loads the order from the store.
type Event struct {
	OrderID  string
	Source   Source
	Metadata *domain.PaymentMetadata
}

type Service struct {
	log         *slog.Logger
	orders      OrderStore
	books       BookStore
	tracker     *idempotency.Tracker
	cache       CacheInvalidator
	events      EventPublisher
	maxOrderAge time.Duration
	tracer      trace.Tracer
}

func NewService(log *slog.Logger, orders OrderStore, books BookStore, tracker *idempotency.Tracker, cache CacheInvalidator, events EventPublisher) *Service {
	return &Service{
		log:         log,
		orders:      orders,
		books:       books,
		tracker:     tracker,
		cache:       cache,
		events:      events,
		maxOrderAge: DefaultMaxOrderAge,
		tracer:      otel.Tracer("fulfillment"),
	}
}

// Fulfill reconciles book stock for a paid order exactly once per process.
// Repeated events for the same order return ResultSkipped. On storage
// failure the tracker is not marked, decrements already applied for earlier
// items stand, and the error carries the order id.
func (s *Service) Fulfill(ctx context.Context, ev Event) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "Fulfill")
	defer span.End()
	span.SetAttributes(
		attribute.String("order_id", ev.OrderID),
		attribute.String("source", string(ev.Source)),
	)

	if s.tracker.Seen(ev.OrderID) {
		s.log.Info("order already reconciled, skipping", "order_id", ev.OrderID, "source", ev.Source)
		return ResultSkipped, nil
	}

	var items []domain.OrderItem
	switch ev.Source {
	case SourceSuccessPage:
		o, err := s.orders.Get(ctx, ev.OrderID)
		if err != nil {
			return "", fmt.Errorf("fulfill order %s: %w", ev.OrderID, err)
		}
		if time.Since(o.CreatedAt) > s.maxOrderAge {
			return "", fmt.Errorf("fulfill order %s: %w", ev.OrderID, ErrOrderTooStale)
		}
		items = domain.FromCartPayload(o.Items)
	default:
		if ev.Metadata != nil {
			items = domain.FromPaymentMetadata(ev.Metadata.BookIDs, ev.Metadata.Quantities)
		}
	}

	if err := s.reconcile(ctx, ev.OrderID, items); err != nil {
		return "", err
	}

	s.tracker.Mark(ev.OrderID)
	return ResultFulfilled, nil
}

func (s *Service) reconcile(ctx context.Context, orderID string, items []domain.OrderItem) error {
	fulfilled := make([]domain.FulfilledItem, 0, len(items))
	for _, it := range items {
		if it.BookID == "" {
			s.log.Warn("item has no book id, skipping decrement", "order_id", orderID, "title", it.Title)
			continue
		}

		remaining, err := s.books.DecrementStock(ctx, it.BookID, orderID, it.Quantity)
		if err != nil {
			// No rollback of earlier items; the movements ledger supports
			// manual reversal.
			return fmt.Errorf("reconcile order %s: decrement book %s: %w", orderID, it.BookID, err)
		}
		if remaining < 0 {
			s.log.Error("stock below zero after decrement",
				"order_id", orderID, "book_id", it.BookID, "remaining", remaining)
			s.publish(ctx, domain.EventStockBelowZero, it.BookID, domain.StockBelowZero{
				OrderID:   orderID,
				BookID:    it.BookID,
				Remaining: remaining,
			})
		}
		fulfilled = append(fulfilled, domain.FulfilledItem{BookID: it.BookID, Quantity: it.Quantity, Remaining: remaining})
	}

	if len(fulfilled) > 0 {
		if err := s.cache.Invalidate(ctx, BooksCacheTag); err != nil {
			s.log.Warn("cache invalidation failed", "order_id", orderID, "tag", BooksCacheTag, "err", err)
		}
		s.publish(ctx, domain.EventOrderFulfilled, orderID, domain.OrderFulfilled{
			OrderID:     orderID,
			Items:       fulfilled,
			FulfilledAt: time.Now().UTC(),
		})
	}
	return nil
}

// publish is best-effort: event delivery never fails a reconciliation.
func (s *Service) publish(ctx context.Context, eventType, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, key, payload); err != nil {
		s.log.Warn("event publish failed", "type", eventType, "key", key, "err", err)
	}
}
