package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	catalogRepo "github.com/admin/tg-bots/pack-store-bot/internal/repository/catalog"
	"github.com/google/uuid"
)

// memOrderRepo in-memory реализация репозитория заказов с честной
// CAS-семантикой Transition
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) ListByBuyer(_ context.Context, buyerID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Order
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *memOrderRepo) UpdateInvoice(_ context.Context, id uuid.UUID, invoice domain.Invoice) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, domain.ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return false, nil
	}
	o.Invoice = invoice
	return true, nil
}

func (r *memOrderRepo) UpdateInvoiceStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if !o.Invoice.IsZero() {
		o.Invoice.Status = status
	}
	return nil
}

func (r *memOrderRepo) Transition(
	_ context.Context,
	id uuid.UUID,
	from []domain.OrderStatus,
	to domain.OrderStatus,
	paidAt *time.Time,
	txInfo domain.TxInfo,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, st := range from {
		if o.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	o.Status = to
	if paidAt != nil {
		o.PaidAt = paidAt
	}
	if len(txInfo) > 0 {
		o.TxInfo = txInfo
	}
	return true, nil
}

// recordingTransport записывает все исходящие отправки
type recordingTransport struct {
	mu       sync.Mutex
	messages []string
	photos   []string
	videos   []string
	docs     []string
	failURL  bool // SendPhotoByURL/SendVideoByURL возвращают ошибку
}

func (t *recordingTransport) SendMessage(_ context.Context, _ int64, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, text)
	return nil
}

func (t *recordingTransport) SendMessageWithKeyboard(_ context.Context, _ int64, text string, _ *domain.InlineKeyboard) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, text)
	return nil
}

func (t *recordingTransport) SendPhotoByURL(_ context.Context, _ int64, photoURL, _ string, _ *domain.InlineKeyboard) error {
	if t.failURL {
		return fmt.Errorf("wrong type of the web page content")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.photos = append(t.photos, photoURL)
	return nil
}

func (t *recordingTransport) SendPhoto(_ context.Context, _ int64, _ []byte, filename, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.photos = append(t.photos, filename)
	return nil
}

func (t *recordingTransport) SendVideoByURL(_ context.Context, _ int64, videoURL, _ string) error {
	if t.failURL {
		return fmt.Errorf("wrong type of the web page content")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.videos = append(t.videos, videoURL)
	return nil
}

func (t *recordingTransport) SendDocument(_ context.Context, _ int64, _ []byte, filename, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.docs = append(t.docs, filename)
	return nil
}

func (t *recordingTransport) AnswerCallbackQuery(_ context.Context, _ string, _ string, _ bool) error {
	return nil
}

func (t *recordingTransport) lastMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		return ""
	}
	return t.messages[len(t.messages)-1]
}

// fakeGateway платёжный шлюз для тестов: подпись сверяется со строкой
// validSignature, invoice выдаётся локально
type fakeGateway struct {
	validSignature string
	failInvoice    bool
	created        int
}

func (g *fakeGateway) CreateInvoice(_ context.Context, order *domain.Order, _ *domain.Product) (*domain.Invoice, error) {
	if g.failInvoice {
		return nil, domain.ErrProviderUnavailable
	}
	g.created++
	return &domain.Invoice{
		ID:       fmt.Sprintf("inv-%d-%s", g.created, order.ID),
		PayURL:   "https://pay.example.com/" + order.ID.String(),
		Status:   "waiting",
		Amount:   order.Price,
		Currency: order.Currency,
	}, nil
}

func (g *fakeGateway) VerifyNotification(_ []byte, signature string) error {
	if g.validSignature == "" {
		return nil
	}
	if signature != g.validSignature {
		return domain.ErrSignatureInvalid
	}
	return nil
}

func (g *fakeGateway) ParseNotification(rawBody []byte) (domain.PaymentNotification, error) {
	var n domain.PaymentNotification
	if err := json.Unmarshal(rawBody, &n); err != nil {
		return nil, err
	}
	return n, nil
}

// recordingDelivery фиксирует доставки, может имитировать сбой
type recordingDelivery struct {
	mu        sync.Mutex
	delivered []uuid.UUID
	fail      bool
}

func (d *recordingDelivery) Deliver(_ context.Context, order *domain.Order, _ *domain.Product) error {
	if d.fail {
		return fmt.Errorf("telegram is down")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, order.ID)
	return nil
}

func (d *recordingDelivery) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

// recordingAlerter собирает алерты
type recordingAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (a *recordingAlerter) SendAlert(_ context.Context, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, message)
	return nil
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

// recordingProducer собирает опубликованные события
type recordingProducer struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingProducer) PublishOrderEvent(_ context.Context, eventType string, _ *domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

type fixture struct {
	uc        *UseCase
	orders    *memOrderRepo
	transport *recordingTransport
	gateway   *fakeGateway
	delivery  *recordingDelivery
	alerter   *recordingAlerter
	producer  *recordingProducer
}

func newFixture() *fixture {
	f := &fixture{
		orders:    newMemOrderRepo(),
		transport: &recordingTransport{},
		gateway:   &fakeGateway{},
		delivery:  &recordingDelivery{},
		alerter:   &recordingAlerter{},
		producer:  &recordingProducer{},
	}

	f.uc = &UseCase{
		Orders:    f.orders,
		Catalog:   catalogRepo.New(),
		Gateway:   f.gateway,
		Transport: f.transport,
		Delivery:  f.delivery,
		Alerter:   f.alerter,
		Producer:  f.producer,
		Log:       slog.Default(),
	}
	return f
}
