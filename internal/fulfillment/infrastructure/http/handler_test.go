package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellbooks/fulfillment/internal/fulfillment/application"
	"github.com/inkwellbooks/fulfillment/internal/fulfillment/domain"
)

type stubFulfiller struct {
	res    application.Result
	err    error
	events []application.Event
}

func (s *stubFulfiller) Fulfill(_ context.Context, ev application.Event) (application.Result, error) {
	s.events = append(s.events, ev)
	return s.res, s.err
}

func newTestHandler(stub *stubFulfiller) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(log, stub).Routes()
}

func TestPaymentWebhookFulfills(t *testing.T) {
	stub := &stubFulfiller{res: application.ResultFulfilled}
	h := newTestHandler(stub)

	body := `{"event_id":"evt-1","order_id":"ord-1","status":"paid",
		"metadata":{"book_ids":"b1,b2","quantities":"1,2"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fulfilled"`)

	require.Len(t, stub.events, 1)
	ev := stub.events[0]
	assert.Equal(t, "ord-1", ev.OrderID)
	assert.Equal(t, application.SourceWebhook, ev.Source)
	require.NotNil(t, ev.Metadata)
	assert.Equal(t, "b1,b2", ev.Metadata.BookIDs)
	assert.Equal(t, "1,2", ev.Metadata.Quantities)
}

func TestPaymentWebhookIgnoresNonPaidStatus(t *testing.T) {
	stub := &stubFulfiller{res: application.ResultFulfilled}
	h := newTestHandler(stub)

	body := `{"order_id":"ord-1","status":"failed"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored"`)
	assert.Empty(t, stub.events)
}

func TestPaymentWebhookRejectsBadBody(t *testing.T) {
	stub := &stubFulfiller{}
	h := newTestHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.events)
}

func TestPaymentWebhookRequiresOrderID(t *testing.T) {
	stub := &stubFulfiller{}
	h := newTestHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{"status":"paid"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.events)
}

func TestConfirmOrder(t *testing.T) {
	tests := []struct {
		name     string
		stub     *stubFulfiller
		wantCode int
		wantBody string
	}{
		{
			name:     "fulfilled",
			stub:     &stubFulfiller{res: application.ResultFulfilled},
			wantCode: http.StatusOK,
			wantBody: `"fulfilled"`,
		},
		{
			name:     "already processed reads as skipped, not an error",
			stub:     &stubFulfiller{res: application.ResultSkipped},
			wantCode: http.StatusOK,
			wantBody: `"skipped"`,
		},
		{
			name:     "stale order",
			stub:     &stubFulfiller{err: application.ErrOrderTooStale},
			wantCode: http.StatusGone,
			wantBody: "order too old",
		},
		{
			name:     "unknown order",
			stub:     &stubFulfiller{err: domain.ErrOrderNotFound},
			wantCode: http.StatusNotFound,
			wantBody: "order not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.stub)

			req := httptest.NewRequest(http.MethodPost, "/orders/ord-9/fulfillment", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)

			require.Len(t, tt.stub.events, 1)
			assert.Equal(t, "ord-9", tt.stub.events[0].OrderID)
			assert.Equal(t, application.SourceSuccessPage, tt.stub.events[0].Source)
		})
	}
}
