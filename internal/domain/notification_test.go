package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseNotification(t *testing.T, raw string) PaymentNotification {
	t.Helper()
	var n PaymentNotification
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	return n
}

func TestNotificationOrderID_FieldPriority(t *testing.T) {
	// order_id выигрывает у всех остальных
	n := parseNotification(t, `{"order_id":"a","orderId":"b","purchase_id":"c"}`)
	assert.Equal(t, "a", n.OrderID())

	n = parseNotification(t, `{"orderId":"b","purchase_id":"c"}`)
	assert.Equal(t, "b", n.OrderID())

	n = parseNotification(t, `{"invoice":{"order_id":"d"},"purchase_id":"c"}`)
	assert.Equal(t, "d", n.OrderID())

	n = parseNotification(t, `{"purchase_id":"c"}`)
	assert.Equal(t, "c", n.OrderID())

	n = parseNotification(t, `{"something":"else"}`)
	assert.Empty(t, n.OrderID())
}

func TestNotificationStatus_FieldPriorityAndNormalization(t *testing.T) {
	n := parseNotification(t, `{"payment_status":"FINISHED","status":"waiting"}`)
	assert.Equal(t, "finished", n.Status())

	n = parseNotification(t, `{"status":"Paid"}`)
	assert.Equal(t, "paid", n.Status())

	n = parseNotification(t, `{"invoice_status":"expired"}`)
	assert.Equal(t, "expired", n.Status())

	n = parseNotification(t, `{}`)
	assert.Empty(t, n.Status())
}

func TestNotificationIsPaid(t *testing.T) {
	for _, status := range []string{"finished", "paid", "success", "confirmed", "FINISHED"} {
		n := PaymentNotification{"payment_status": status}
		assert.True(t, n.IsPaid(), "status %q must be treated as paid", status)
	}

	for _, status := range []string{"waiting", "expired", "partially_paid", ""} {
		n := PaymentNotification{"payment_status": status}
		assert.False(t, n.IsPaid(), "status %q must not be treated as paid", status)
	}
}

func TestNotificationPaidAmount(t *testing.T) {
	n := parseNotification(t, `{"actually_paid":9.5,"pay_amount":10,"price_amount":11}`)
	amount, ok := n.PaidAmount()
	assert.True(t, ok)
	assert.Equal(t, 9.5, amount)

	n = parseNotification(t, `{"pay_amount":10,"price_amount":11}`)
	amount, ok = n.PaidAmount()
	assert.True(t, ok)
	assert.Equal(t, 10.0, amount)

	n = parseNotification(t, `{"price_amount":11}`)
	amount, ok = n.PaidAmount()
	assert.True(t, ok)
	assert.Equal(t, 11.0, amount)

	n = parseNotification(t, `{"payment_status":"finished"}`)
	_, ok = n.PaidAmount()
	assert.False(t, ok)
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusPaid.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusInvoiced.IsTerminal())
}

func TestIsPaidProviderStatus(t *testing.T) {
	assert.True(t, IsPaidProviderStatus("finished"))
	assert.True(t, IsPaidProviderStatus("Confirmed"))
	assert.False(t, IsPaidProviderStatus("waiting"))
	assert.False(t, IsPaidProviderStatus(""))
}

func TestInvoiceIsPlaceholder(t *testing.T) {
	assert.True(t, Invoice{ID: PlaceholderInvoicePrefix + "abc"}.IsPlaceholder())
	assert.False(t, Invoice{ID: "inv-abc"}.IsPlaceholder())
	assert.False(t, Invoice{}.IsPlaceholder())
}

func TestInvoiceJSONBRoundTrip(t *testing.T) {
	inv := Invoice{ID: "inv-1", PayURL: "https://p/1", Status: "waiting", Amount: 10, Currency: "USDT"}

	v, err := inv.Value()
	require.NoError(t, err)

	var scanned Invoice
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, inv, scanned)

	// пустой invoice хранится как NULL
	empty := Invoice{}
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var fromNull Invoice
	require.NoError(t, fromNull.Scan(nil))
	assert.True(t, fromNull.IsZero())
}
