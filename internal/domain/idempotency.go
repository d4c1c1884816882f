package domain

import "time"

// IdempotencyRecord — состояние обработки запроса с заголовком
// Idempotency-Key. Повторный запрос с тем же ключом и хэшем тела
// получает сохранённый ответ вместо повторной обработки.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseBody []byte
	HTTPStatus   int
	Status       IdempotencyStatus
	TTLAt        time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Replayable сообщает, можно ли отдать клиенту сохранённый ответ:
// обработка завершена и тело ответа записано.
func (r IdempotencyRecord) Replayable() bool {
	return r.Status.Terminal() && len(r.ResponseBody) > 0
}

// IdempotencyStatus описывает жизненный цикл ключа идемпотентности.
type IdempotencyStatus string

const (
	IdempotencyStatusProcessing IdempotencyStatus = "processing"
	IdempotencyStatusDone       IdempotencyStatus = "done"
	IdempotencyStatusFailed     IdempotencyStatus = "failed"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s IdempotencyStatus) Valid() bool {
	switch s {
	case IdempotencyStatusProcessing, IdempotencyStatusDone, IdempotencyStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal — обработка по ключу завершена (успехом или ошибкой)
// и статус больше не изменится.
func (s IdempotencyStatus) Terminal() bool {
	return s == IdempotencyStatusDone || s == IdempotencyStatusFailed
}
