package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/cache"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/service"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/storage"
)

const (
	deliveredTTL     = 30 * 24 * time.Hour
	presignedLinkTTL = 24 * time.Hour
)

// Service доставляет оплаченный пак покупателю. Цепочка fallback:
// отправка по ссылке → байты из S3 через multipart → текст со ссылкой.
// Ошибка возвращается только если не сработал ни один вариант.
type Service struct {
	transport service.ITransport
	s3        storage.IS3Client // опционален
	cache     cache.Cache       // опционален
	log       *slog.Logger
}

// New создаёт сервис доставки. s3 и cache могут быть nil -
// соответствующие ступени цепочки просто пропускаются.
func New(transport service.ITransport, s3 storage.IS3Client, c cache.Cache, log *slog.Logger) service.IDeliveryService {
	return &Service{
		transport: transport,
		s3:        s3,
		cache:     c,
		log:       log,
	}
}

// Deliver отправляет контент пака покупателю
func (s *Service) Deliver(ctx context.Context, order *domain.Order, product *domain.Product) error {
	caption := fmt.Sprintf("🎁 <b>%s</b>\n\nСпасибо за покупку! Ваш заказ <code>%s</code> оплачен.",
		product.Title, order.ID)

	if s.alreadyDelivered(ctx, order) {
		s.log.Info("pack already delivered, skipping",
			"order_id", order.ID,
			"buyer_id", order.BuyerID,
		)
		return nil
	}

	if err := s.sendByReference(ctx, order, product, caption); err == nil {
		s.markDelivered(ctx, order)
		return nil
	} else {
		s.log.Warn("reference delivery failed, trying direct upload",
			"error", err,
			"order_id", order.ID,
			"product_id", product.ID,
		)
	}

	if err := s.sendBytes(ctx, order, product, caption); err == nil {
		s.markDelivered(ctx, order)
		return nil
	} else {
		s.log.Warn("direct upload failed, falling back to text link",
			"error", err,
			"order_id", order.ID,
			"product_id", product.ID,
		)
	}

	if err := s.sendTextLink(ctx, order, product); err != nil {
		return fmt.Errorf("all delivery methods failed for order %s: %w", order.ID, err)
	}

	s.markDelivered(ctx, order)
	return nil
}

// sendByReference отправляет контент по внешней ссылке
func (s *Service) sendByReference(ctx context.Context, order *domain.Order, product *domain.Product, caption string) error {
	if product.AssetURL == "" {
		return fmt.Errorf("product %s has no asset url", product.ID)
	}

	switch product.Kind {
	case domain.ProductKindVideo:
		return s.transport.SendVideoByURL(ctx, order.BuyerID, product.AssetURL, caption)
	default:
		return s.transport.SendPhotoByURL(ctx, order.BuyerID, product.AssetURL, caption, nil)
	}
}

// sendBytes скачивает пак из хранилища и загружает напрямую
func (s *Service) sendBytes(ctx context.Context, order *domain.Order, product *domain.Product, caption string) error {
	if s.s3 == nil {
		return fmt.Errorf("object storage is not configured")
	}
	if product.AssetKey == "" {
		return fmt.Errorf("product %s has no asset key", product.ID)
	}

	data, err := s.s3.GetFile(ctx, product.AssetKey)
	if err != nil {
		return fmt.Errorf("failed to fetch asset %s: %w", product.AssetKey, err)
	}

	filename := path.Base(product.AssetKey)
	return s.transport.SendDocument(ctx, order.BuyerID, data, filename, caption)
}

// sendTextLink последняя ступень: текстовое сообщение со ссылкой на пак
func (s *Service) sendTextLink(ctx context.Context, order *domain.Order, product *domain.Product) error {
	link := product.AssetURL
	if s.s3 != nil && product.AssetKey != "" {
		presigned, err := s.s3.GetPresignedURL(ctx, product.AssetKey, presignedLinkTTL)
		if err == nil {
			link = presigned
		} else {
			s.log.Warn("failed to generate presigned url",
				"error", err,
				"asset_key", product.AssetKey,
			)
		}
	}

	if link == "" {
		return fmt.Errorf("no link available for product %s", product.ID)
	}

	text := fmt.Sprintf("🎁 <b>%s</b>\n\nЗаказ <code>%s</code> оплачен. Скачать пак: %s",
		product.Title, order.ID, link)
	return s.transport.SendMessage(ctx, order.BuyerID, text)
}

func (s *Service) alreadyDelivered(ctx context.Context, order *domain.Order) bool {
	if s.cache == nil {
		return false
	}

	exists, err := s.cache.Exists(ctx, cache.DeliveredKey(order.ID))
	if err != nil {
		s.log.Warn("failed to check delivered marker", "error", err, "order_id", order.ID)
		return false
	}
	return exists
}

func (s *Service) markDelivered(ctx context.Context, order *domain.Order) {
	if s.cache == nil {
		return
	}

	key := cache.DeliveredKey(order.ID)
	if err := s.cache.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), deliveredTTL); err != nil {
		s.log.Warn("failed to set delivered marker", "error", err, "order_id", order.ID)
	}
}
