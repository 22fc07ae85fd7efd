package crypto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// Gateway адаптер крипто-платёжного провайдера (NowPayments-совместимый API).
// Реализует ports/payment.IPaymentGateway.
type Gateway struct {
	cfg        *Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewGateway(cfg *Config, log *slog.Logger) *Gateway {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Gateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// createInvoiceRequest тело запроса POST /invoice
type createInvoiceRequest struct {
	PriceAmount      float64 `json:"price_amount"`
	PriceCurrency    string  `json:"price_currency"`
	OrderID          string  `json:"order_id"`
	OrderDescription string  `json:"order_description"`
	IPNCallbackURL   string  `json:"ipn_callback_url,omitempty"`
}

// createInvoiceResponse ответ провайдера на создание invoice
type createInvoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"payment_status"`
}

// CreateInvoice выставляет invoice на заказ. Любая ошибка транспорта или
// провайдера деградирует в локальный placeholder-invoice, чтобы покупка
// никогда не упиралась в недоступность провайдера.
func (g *Gateway) CreateInvoice(ctx context.Context, order *domain.Order, product *domain.Product) (*domain.Invoice, error) {
	if !g.cfg.IsLive() {
		g.log.Info("payment provider not configured, issuing placeholder invoice",
			"order_id", order.ID,
		)
		return g.placeholderInvoice(order), nil
	}

	invoice, err := g.createProviderInvoice(ctx, order, product)
	if err != nil {
		g.log.Warn("payment provider unavailable, falling back to placeholder invoice",
			"error", err,
			"order_id", order.ID,
		)
		return g.placeholderInvoice(order), nil
	}

	return invoice, nil
}

func (g *Gateway) createProviderInvoice(ctx context.Context, order *domain.Order, product *domain.Product) (*domain.Invoice, error) {
	reqBody := createInvoiceRequest{
		PriceAmount:      order.Price,
		PriceCurrency:    order.Currency,
		OrderID:          order.ID.String(),
		OrderDescription: product.Title,
		IPNCallbackURL:   g.cfg.IPNCallbackURL,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice request: %w", err)
	}

	url := g.cfg.APIBaseURL + "/invoice"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.cfg.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: provider returned status %d: %s",
			domain.ErrProviderUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	var invResp createInvoiceResponse
	if err := json.Unmarshal(body, &invResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider response: %w", err)
	}

	if invResp.ID == "" || invResp.InvoiceURL == "" {
		return nil, fmt.Errorf("%w: provider returned incomplete invoice", domain.ErrProviderUnavailable)
	}

	status := invResp.Status
	if status == "" {
		status = "waiting"
	}

	g.log.Info("provider invoice created",
		"order_id", order.ID,
		"invoice_id", invResp.ID,
	)

	return &domain.Invoice{
		ID:       invResp.ID,
		PayURL:   invResp.InvoiceURL,
		Status:   status,
		Amount:   order.Price,
		Currency: order.Currency,
	}, nil
}

// placeholderInvoice локальный invoice с pay-url на нашу страницу оплаты.
// Записывается на заказ ровно так же, как настоящий.
func (g *Gateway) placeholderInvoice(order *domain.Order) *domain.Invoice {
	return &domain.Invoice{
		ID:       domain.PlaceholderInvoicePrefix + order.ID.String(),
		PayURL:   fmt.Sprintf("%s/pay/%s", g.cfg.PublicBaseURL, order.ID),
		Status:   "waiting",
		Amount:   order.Price,
		Currency: order.Currency,
	}
}

// ParseNotification разбирает тело IPN-уведомления
func (g *Gateway) ParseNotification(rawBody []byte) (domain.PaymentNotification, error) {
	var notification domain.PaymentNotification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		return nil, fmt.Errorf("failed to parse notification body: %w", err)
	}
	return notification, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
