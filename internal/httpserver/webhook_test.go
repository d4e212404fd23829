package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/repository/inventory"
	paymentsvc "storefront/internal/service/payment"
	"github.com/gin-gonic/gin"
)

const testSecret = "whsec_test"

type webhookOrders struct {
	orders map[string]*domain.Order
}

func (f *webhookOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (f *webhookOrders) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.PaymentSessionID == sessionID {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *webhookOrders) MarkPaid(_ context.Context, orderID, _ string, _ *domain.Address) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.Status != domain.OrderPending {
		return false, nil
	}
	o.Status = domain.OrderPaid
	return true, nil
}

func (f *webhookOrders) MarkCancelled(_ context.Context, orderID string) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.Status != domain.OrderPending {
		return false, nil
	}
	o.Status = domain.OrderCancelled
	return true, nil
}

func (f *webhookOrders) MarkStockApplied(_ context.Context, orderID string) error {
	if o, ok := f.orders[orderID]; ok {
		o.StockApplied = true
	}
	return nil
}

func webhookRouter(t *testing.T) (*gin.Engine, *webhookOrders) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orders := &webhookOrders{orders: map[string]*domain.Order{
		"o1": {
			ID:     "o1",
			UserID: "u1",
			Status: domain.OrderPending,
			Lines:  []domain.OrderLine{{ProductID: "p1", Quantity: 1}},
		},
	}}
	store := inventory.NewMemoryStore()
	store.SetStock("p1", 5)

	svc := paymentsvc.New(orders, store, nil, testSecret, log.New(io.Discard, "", 0))
	router := gin.New()
	router.POST("/webhook/payment", webhookHandler(svc, log.New(io.Discard, "", 0)))
	return router, orders
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func eventPayload(t *testing.T, eventType, orderID string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_1",
		"type": eventType,
		"data": map[string]any{
			"metadata": map[string]string{"orderId": orderID, "userId": "u1"},
		},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func TestWebhookAcceptsSignedEvent(t *testing.T) {
	router, orders := webhookRouter(t)
	payload := eventPayload(t, "checkout.session.completed", "o1")

	rec := postWebhook(router, payload, gateway.Sign(testSecret, payload, time.Now()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if orders.orders["o1"].Status != domain.OrderPaid {
		t.Fatalf("expected order paid, got %s", orders.orders["o1"].Status)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router, orders := webhookRouter(t)
	payload := eventPayload(t, "checkout.session.completed", "o1")

	rec := postWebhook(router, payload, "t=123,v1=deadbeef")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if orders.orders["o1"].Status != domain.OrderPending {
		t.Fatalf("unverified event must not change state")
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	router, _ := webhookRouter(t)
	payload := eventPayload(t, "checkout.session.completed", "o1")

	rec := postWebhook(router, payload, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	router, _ := webhookRouter(t)
	payload := []byte(`{"id":"evt_1"`)

	rec := postWebhook(router, payload, gateway.Sign(testSecret, payload, time.Now()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookAcksDuplicateDelivery(t *testing.T) {
	router, orders := webhookRouter(t)
	payload := eventPayload(t, "checkout.session.completed", "o1")
	sig := gateway.Sign(testSecret, payload, time.Now())

	if rec := postWebhook(router, payload, sig); rec.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d", rec.Code)
	}
	if rec := postWebhook(router, payload, sig); rec.Code != http.StatusOK {
		t.Fatalf("duplicate delivery: expected 200, got %d", rec.Code)
	}
	if orders.orders["o1"].Status != domain.OrderPaid {
		t.Fatalf("expected order paid")
	}
}

func TestWebhookAcksUnknownEventType(t *testing.T) {
	router, _ := webhookRouter(t)
	payload := eventPayload(t, "invoice.created", "o1")

	rec := postWebhook(router, payload, gateway.Sign(testSecret, payload, time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for intentionally ignored event, got %d", rec.Code)
	}
}
