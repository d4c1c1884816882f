package gateway

import (
	"fmt"
	"os"
)

// Config — неизменяемые настройки платёжного шлюза. Загружаются один раз
// на старте и передаются в Signer и FormBuilder конструктором; повторное
// чтение окружения на каждый запрос не допускается.
type Config struct {
	// StoreName — идентификатор магазина в шлюзе.
	StoreName string
	// SharedSecret — общий секрет для HMAC-подписей.
	SharedSecret string
	// PaymentURL — адрес, на который браузер отправляет подписанную форму.
	PaymentURL string
	// Timezone — таймзона txndatetime, например "Europe/Berlin".
	Timezone string
	// CurrencyName — буквенный код валюты по умолчанию ("EUR").
	CurrencyName string
	// CurrencyCode — числовой ISO-код валюты ("978").
	CurrencyCode string
	// FrontendURL — база для редиректов покупателя после оплаты.
	FrontendURL string
	// BackendURL — база для callback-адресов, которые дергает шлюз.
	BackendURL string
}

const defaultTimezone = "Europe/Berlin"

// ConfigFromEnv читает настройки шлюза из окружения.
// Отсутствие имени магазина или секрета — фатальная ошибка старта,
// а не пер-запросная: без них подпись невозможна в принципе.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		StoreName:    os.Getenv("GATEWAY_STORE_NAME"),
		SharedSecret: os.Getenv("GATEWAY_SHARED_SECRET"),
		PaymentURL:   os.Getenv("GATEWAY_PAYMENT_URL"),
		Timezone:     os.Getenv("GATEWAY_TIMEZONE"),
		CurrencyName: os.Getenv("GATEWAY_CURRENCY_NAME"),
		CurrencyCode: os.Getenv("GATEWAY_CURRENCY_CODE"),
		FrontendURL:  os.Getenv("FRONTEND_BASE_URL"),
		BackendURL:   os.Getenv("BACKEND_BASE_URL"),
	}

	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.CurrencyName == "" {
		cfg.CurrencyName = "EUR"
	}
	if cfg.CurrencyCode == "" {
		cfg.CurrencyCode = "978"
	}

	return cfg, cfg.Validate()
}

// Validate проверяет поля, без которых сервис не имеет права стартовать.
func (c Config) Validate() error {
	if c.StoreName == "" {
		return fmt.Errorf("gateway store name is required")
	}
	if c.SharedSecret == "" {
		return fmt.Errorf("gateway shared secret is required")
	}
	if c.PaymentURL == "" {
		return fmt.Errorf("gateway payment url is required")
	}
	return nil
}
