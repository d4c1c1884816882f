package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// TTL по умолчанию, если вызывающая сторона его не задала.
const defaultIdempotencyTTL = 24 * time.Hour

// idempotencyStore — in-memory реестр Idempotency-Key для разработки и тестов.
type idempotencyStore struct {
	mu      sync.RWMutex
	records map[string]domain.IdempotencyRecord
}

// NewIdempotencyRepository создаёт in-memory реализацию IdempotencyRepository.
func NewIdempotencyRepository() domain.IdempotencyRepository {
	return &idempotencyStore{records: make(map[string]domain.IdempotencyRecord)}
}

func (s *idempotencyStore) CreateProcessing(key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}
	requestHash = strings.TrimSpace(requestHash)
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	now := time.Now().UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(defaultIdempotencyTTL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok {
		// Существующая запись возвращается в обоих конфликтных исходах:
		// вызывающая сторона решает, отдать ли сохранённый ответ.
		if existing.RequestHash != requestHash {
			return copyRecord(existing), domain.ErrIdempotencyHashMismatch
		}
		return copyRecord(existing), domain.ErrIdempotencyKeyAlreadyExists
	}

	record := domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		TTLAt:       ttlAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.records[key] = record

	return copyRecord(record), nil
}

func (s *idempotencyStore) Get(key string) (domain.IdempotencyRecord, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return domain.IdempotencyRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}
	return copyRecord(record), nil
}

func (s *idempotencyStore) MarkDone(key string, responseBody []byte, httpStatus int) error {
	return s.finish(key, domain.IdempotencyStatusDone, responseBody, httpStatus)
}

func (s *idempotencyStore) MarkFailed(key string, responseBody []byte, httpStatus int) error {
	return s.finish(key, domain.IdempotencyStatusFailed, responseBody, httpStatus)
}

func (s *idempotencyStore) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, record := range s.records {
		if record.TTLAt.After(before) {
			continue
		}

		delete(s.records, key)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}

	return removed, nil
}

func (s *idempotencyStore) finish(key string, status domain.IdempotencyStatus, responseBody []byte, httpStatus int) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return domain.ErrIdempotencyKeyNotFound
	}

	record.Status = status
	record.ResponseBody = append([]byte(nil), responseBody...)
	record.HTTPStatus = httpStatus
	record.UpdatedAt = time.Now().UTC()
	s.records[key] = record

	return nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrIdempotencyKeyRequired
	}
	return key, nil
}

// copyRecord защищает внутреннее состояние от мутаций через возвращённый срез.
func copyRecord(src domain.IdempotencyRecord) domain.IdempotencyRecord {
	dst := src
	dst.ResponseBody = append([]byte(nil), src.ResponseBody...)
	return dst
}

var _ domain.IdempotencyRepository = (*idempotencyStore)(nil)
