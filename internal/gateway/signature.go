package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Signer вычисляет и проверяет HMAC-SHA256 подписи протокола шлюза.
// Исходящая форма и входящий webhook подписываются РАЗНЫМИ алгоритмами —
// это требование протокола, а не случайность.
type Signer struct {
	cfg    Config
	logger *log.Entry
}

// NewSigner создаёт Signer с провалидированной конфигурацией шлюза.
func NewSigner(cfg Config, logger *log.Entry) *Signer {
	if logger == nil {
		logger = log.WithField("component", "gateway-signer")
	}
	return &Signer{cfg: cfg, logger: logger}
}

// SignParams подписывает исходящий набор параметров формы.
//
// Параметры с пустыми значениями отбрасываются, оставшиеся ключи
// сортируются строгим байтовым порядком (верхний регистр раньше
// нижнего — видимое требование протокола), значения конкатенируются
// через "|" и подписываются HMAC-SHA256. Результат — base64.
func (s *Signer) SignParams(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		if value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, key := range keys {
		values = append(values, fields[key])
	}

	mac := hmac.New(sha256.New, []byte(s.cfg.SharedSecret))
	mac.Write([]byte(strings.Join(values, "|")))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyNotification проверяет подпись входящего webhook-уведомления.
//
// Строка для подписи — ФИКСИРОВАННЫЙ порядок без разделителей:
// chargetotal + secret + currency + txndatetime + storename + approval_code.
// Оба дайджеста декодируются из base64 и сравниваются за константное
// время; строковое сравнение здесь — регрессия безопасности.
// Несовпадение — не ошибка, а false; ошибкой считается только
// некорректный ввод, и он тоже трактуется как false.
func (s *Signer) VerifyNotification(chargetotal, currency, txndatetime, approvalCode, receivedHash string) bool {
	var payload strings.Builder
	payload.WriteString(chargetotal)
	payload.WriteString(s.cfg.SharedSecret)
	payload.WriteString(currency)
	payload.WriteString(txndatetime)
	payload.WriteString(s.cfg.StoreName)
	payload.WriteString(approvalCode)

	mac := hmac.New(sha256.New, []byte(s.cfg.SharedSecret))
	mac.Write([]byte(payload.String()))
	computed := mac.Sum(nil)

	received, err := base64.StdEncoding.DecodeString(receivedHash)
	if err != nil {
		// Логируем только префикс: полные хеши и секреты в лог не попадают.
		s.logger.WithField("hash_prefix", hashPrefix(receivedHash)).
			Warn("malformed notification hash, treating as verification failure")
		return false
	}

	return hmac.Equal(computed, received)
}

// hashPrefix возвращает безопасный для логов префикс хеша.
func hashPrefix(h string) string {
	const n = 8
	if len(h) <= n {
		return h
	}
	return h[:n] + "..."
}
