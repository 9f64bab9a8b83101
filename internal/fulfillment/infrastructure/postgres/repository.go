package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwellbooks/fulfillment/internal/fulfillment/domain"
)

type BookRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewBookRepository(log *slog.Logger, pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{log: log, pool: pool}
}

// DecrementStock applies the decrement and reads the resulting stock in one
// UPDATE .. RETURNING, so concurrent decrements from unrelated orders on the
// same book cannot lose updates. Each applied decrement also writes a
// stock_movements row for manual reversal.
func (r *BookRepository) DecrementStock(ctx context.Context, bookID, orderID string, qty int) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var remaining int
	err = tx.QueryRow(ctx,
		`UPDATE books SET stock = stock - $1, updated_at = now() WHERE id = $2 RETURNING stock`,
		qty, bookID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrBookNotFound
	}
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO stock_movements (id, book_id, order_id, change, reason) VALUES ($1,$2,$3,$4,$5)`,
		uuid.NewString(), bookID, orderID, -qty, "fulfillment")
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	r.log.Debug("stock decremented", "book_id", bookID, "order_id", orderID, "qty", qty, "remaining", remaining)
	return remaining, nil
}

func (r *BookRepository) Get(ctx context.Context, id string) (domain.Book, error) {
	var b domain.Book
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, stock FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Book{}, domain.ErrBookNotFound
	}
	if err != nil {
		return domain.Book{}, err
	}
	return b, nil
}

type OrderRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOrderRepository(log *slog.Logger, pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{log: log, pool: pool}
}

func (r *OrderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	var (
		o        domain.Order
		rawItems []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, items, fulfillment_type, created_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &rawItems, &o.FulfillmentType, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	if o.FulfillmentType == "" {
		o.FulfillmentType = domain.FulfillmentShipping
	}

	// Legacy rows carry heterogeneous item payloads; an unreadable blob
	// means no items, normalization drops the rest at the boundary.
	if err := json.Unmarshal(rawItems, &o.Items); err != nil {
		r.log.Warn("order items payload unreadable", "order_id", id, "err", err)
		o.Items = nil
	}
	return o, nil
}
