package domain

import "strings"

// PaymentNotification распарсенное тело IPN-уведомления от платёжного провайдера.
// Провайдер исторически присылает поля под разными именами, поэтому доступ
// к order_id и статусу идёт через методы с фиксированным приоритетом полей.
type PaymentNotification map[string]interface{}

// paidStatuses нормализованные статусы, которые считаются оплатой
var paidStatuses = map[string]struct{}{
	"finished":  {},
	"paid":      {},
	"success":   {},
	"confirmed": {},
}

// IsPaidProviderStatus true если статус провайдера означает оплату.
// Используется и для уведомлений, и для ручной проверки сохранённого invoice.
func IsPaidProviderStatus(status string) bool {
	_, ok := paidStatuses[strings.ToLower(status)]
	return ok
}

// OrderID извлекает id заказа из уведомления.
// Приоритет: order_id → orderId → invoice.order_id → purchase_id, первое непустое.
func (n PaymentNotification) OrderID() string {
	if v := n.str("order_id"); v != "" {
		return v
	}
	if v := n.str("orderId"); v != "" {
		return v
	}
	if inv, ok := n["invoice"].(map[string]interface{}); ok {
		if v, ok := inv["order_id"].(string); ok && v != "" {
			return v
		}
	}
	return n.str("purchase_id")
}

// Status возвращает нормализованный (lower-case) статус invoice из уведомления
func (n PaymentNotification) Status() string {
	for _, key := range []string{"payment_status", "status", "invoice_status"} {
		if v := n.str(key); v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

// IsPaid true если статус уведомления входит в множество "оплачено"
func (n PaymentNotification) IsPaid() bool {
	return IsPaidProviderStatus(n.Status())
}

// PaidAmount фактически оплаченная сумма, если провайдер её прислал
func (n PaymentNotification) PaidAmount() (float64, bool) {
	for _, key := range []string{"actually_paid", "pay_amount", "price_amount"} {
		switch v := n[key].(type) {
		case float64:
			return v, true
		}
	}
	return 0, false
}

func (n PaymentNotification) str(key string) string {
	if v, ok := n[key].(string); ok {
		return v
	}
	return ""
}
