package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// VerifyNotification проверяет HMAC-SHA512 подпись тела уведомления.
// Подпись считается над канонической сериализацией JSON: ключи отсортированы,
// без пробелов - ровно так подписывает провайдер.
//
// Пустой секрет отключает проверку полностью (локальная разработка без
// провайдера); с настроенным секретом проверка не пропускается никогда.
func (g *Gateway) VerifyNotification(rawBody []byte, signature string) error {
	if g.cfg.IPNSecret == "" {
		g.log.Warn("IPN secret is not configured, skipping signature verification")
		return nil
	}

	expected, err := SignBody(rawBody, g.cfg.IPNSecret)
	if err != nil {
		return fmt.Errorf("failed to compute signature: %w", err)
	}

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		g.log.Warn("notification signature mismatch")
		return domain.ErrSignatureInvalid
	}

	return nil
}

// SignBody считает hex(HMAC-SHA512(canonicalJSON(body), secret)).
// Экспортирована для тестов и для симуляции IPN на dev pay-странице.
func SignBody(rawBody []byte, secret string) (string, error) {
	canonical, err := canonicalJSON(rawBody)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// canonicalJSON перекодирует JSON в компактный вид с сортировкой ключей.
// encoding/json сортирует ключи map при маршалинге, этим и пользуемся.
func canonicalJSON(rawBody []byte) ([]byte, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("notification body is not a JSON object: %w", err)
	}

	canonical, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode notification body: %w", err)
	}

	return canonical, nil
}
