package service

import "context"

// IAlerterService отправка алертов в ops-чат (reconciliation warnings, сбои доставки)
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
