package crypto

type Config struct {
	APIBaseURL string `envconfig:"API_BASE_URL" default:"https://api.nowpayments.io/v1"`
	APIKey     string `envconfig:"API_KEY"`

	// IPNSecret общий секрет для проверки подписи уведомлений.
	// Пустой секрет отключает проверку - только для локальной разработки.
	IPNSecret string `envconfig:"IPN_SECRET"`

	// IPNCallbackURL публичный URL, на который провайдер шлёт уведомления
	IPNCallbackURL string `envconfig:"IPN_CALLBACK_URL"`

	// PublicBaseURL база для placeholder pay-url при недоступном провайдере
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	RequestTimeout int `envconfig:"REQUEST_TIMEOUT" default:"15"` // в секундах
}

// IsLive true если настроен реальный провайдер
func (c *Config) IsLive() bool {
	return c != nil && c.APIKey != ""
}
