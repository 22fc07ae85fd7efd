package crypto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() (*domain.Order, *domain.Product) {
	order := &domain.Order{
		ID:        uuid.New(),
		BuyerID:   42,
		ProductID: "face_pack",
		Price:     10.0,
		Currency:  "USDT",
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	product := &domain.Product{
		ID:       "face_pack",
		Title:    "Портрет-пак",
		Price:    10.0,
		Currency: "USDT",
	}
	return order, product
}

func TestCreateInvoice_ProviderSuccess(t *testing.T) {
	order, product := testOrder()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoice", r.URL.Path)
		assert.Equal(t, "api-key-123", r.Header.Get("x-api-key"))

		var req createInvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, order.ID.String(), req.OrderID)
		assert.Equal(t, 10.0, req.PriceAmount)
		assert.Equal(t, "USDT", req.PriceCurrency)

		_ = json.NewEncoder(w).Encode(createInvoiceResponse{
			ID:         "inv-777",
			InvoiceURL: "https://provider.example.com/pay/inv-777",
			Status:     "waiting",
		})
	}))
	defer srv.Close()

	g := newTestGateway(&Config{
		APIBaseURL: srv.URL,
		APIKey:     "api-key-123",
	})

	invoice, err := g.CreateInvoice(context.Background(), order, product)
	require.NoError(t, err)
	assert.Equal(t, "inv-777", invoice.ID)
	assert.Equal(t, "https://provider.example.com/pay/inv-777", invoice.PayURL)
	assert.Equal(t, "waiting", invoice.Status)
	assert.Equal(t, 10.0, invoice.Amount)
}

func TestCreateInvoice_ProviderErrorFallsBackToPlaceholder(t *testing.T) {
	order, product := testOrder()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGateway(&Config{
		APIBaseURL:    srv.URL,
		APIKey:        "api-key-123",
		PublicBaseURL: "https://bot.example.com",
	})

	invoice, err := g.CreateInvoice(context.Background(), order, product)
	require.NoError(t, err)
	assert.Equal(t, "local-"+order.ID.String(), invoice.ID)
	assert.Equal(t, "https://bot.example.com/pay/"+order.ID.String(), invoice.PayURL)
	assert.Equal(t, "waiting", invoice.Status)
}

func TestCreateInvoice_ProviderDownFallsBackToPlaceholder(t *testing.T) {
	order, product := testOrder()

	g := newTestGateway(&Config{
		APIBaseURL:     "http://127.0.0.1:1", // заведомо закрытый порт
		APIKey:         "api-key-123",
		PublicBaseURL:  "https://bot.example.com",
		RequestTimeout: 1,
	})

	invoice, err := g.CreateInvoice(context.Background(), order, product)
	require.NoError(t, err)
	assert.Equal(t, "local-"+order.ID.String(), invoice.ID)
}

func TestCreateInvoice_NotConfiguredUsesPlaceholder(t *testing.T) {
	order, product := testOrder()

	g := newTestGateway(&Config{PublicBaseURL: "http://localhost:8080"})

	invoice, err := g.CreateInvoice(context.Background(), order, product)
	require.NoError(t, err)
	assert.Equal(t, "local-"+order.ID.String(), invoice.ID)
	assert.Contains(t, invoice.PayURL, "/pay/"+order.ID.String())
}

func TestCreateInvoice_IncompleteProviderResponse(t *testing.T) {
	order, product := testOrder()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "inv-1"}) // без invoice_url
	}))
	defer srv.Close()

	g := newTestGateway(&Config{
		APIBaseURL:    srv.URL,
		APIKey:        "api-key-123",
		PublicBaseURL: "https://bot.example.com",
	})

	invoice, err := g.CreateInvoice(context.Background(), order, product)
	require.NoError(t, err)
	assert.Equal(t, "local-"+order.ID.String(), invoice.ID)
}

func TestParseNotification(t *testing.T) {
	g := newTestGateway(&Config{})

	n, err := g.ParseNotification([]byte(`{"order_id":"abc","payment_status":"finished"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", n.OrderID())
	assert.True(t, n.IsPaid())

	_, err = g.ParseNotification([]byte(`garbage`))
	assert.Error(t, err)
}
