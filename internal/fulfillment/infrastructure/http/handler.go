package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/inkwellbooks/fulfillment/internal/fulfillment/application"
	"github.com/inkwellbooks/fulfillment/internal/fulfillment/domain"
)

// Fulfiller is the single fulfillment entry point both triggers call into.
type Fulfiller interface {
	Fulfill(ctx context.Context, ev application.Event) (application.Result, error)
}

type Handler struct {
	log     *slog.Logger
	service Fulfiller
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service Fulfiller) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("fulfillment-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/webhooks/payment", h.paymentWebhook)
	r.Post("/orders/{id}/fulfillment", h.confirmOrder)

	return r
}

type webhookReq struct {
	EventID  string `json:"event_id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Metadata struct {
		BookIDs    string `json:"book_ids"`
		Quantities string `json:"quantities"`
	} `json:"metadata"`
}

// paymentWebhook is the asynchronous trigger: the provider calls it on
// payment success and may retry; the idempotency gate absorbs retries.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaymentWebhook")
	defer span.End()

	var req webhookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		http.Error(w, "missing order_id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("webhook_event_id", req.EventID),
	)

	if req.Status != "paid" {
		h.log.Info("ignoring webhook with non-paid status", "order_id", req.OrderID, "status", req.Status)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	res, err := h.service.Fulfill(ctx, application.Event{
		OrderID: req.OrderID,
		Source:  application.SourceWebhook,
		Metadata: &domain.PaymentMetadata{
			BookIDs:    req.Metadata.BookIDs,
			Quantities: req.Metadata.Quantities,
		},
	})
	if err != nil {
		h.log.Error("webhook fulfillment failed", "order_id", req.OrderID, "err", err)
		http.Error(w, "fulfillment failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(res), "order_id": req.OrderID})
}

// confirmOrder is the synchronous fallback: the buyer's browser lands on the
// confirmation page before (or instead of) the webhook arriving.
func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmOrder")
	defer span.End()

	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "missing order id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("order_id", orderID))

	res, err := h.service.Fulfill(ctx, application.Event{
		OrderID: orderID,
		Source:  application.SourceSuccessPage,
	})
	switch {
	case errors.Is(err, application.ErrOrderTooStale):
		http.Error(w, "order too old to fulfill", http.StatusGone)
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case err != nil:
		h.log.Error("success-page fulfillment failed", "order_id", orderID, "err", err)
		http.Error(w, "fulfillment failed", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": string(res), "order_id": orderID})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
