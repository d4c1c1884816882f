package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// timelineStore держит историю заказов в памяти, сгруппированную по order_id.
type timelineStore struct {
	mu      sync.RWMutex
	byOrder map[string][]domain.TimelineEvent
}

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineStore{byOrder: make(map[string][]domain.TimelineEvent)}
}

// Append добавляет событие, сохраняя хронологический порядок среза.
func (s *timelineStore) Append(event domain.TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.byOrder[event.OrderID]
	at := sort.Search(len(events), func(i int) bool {
		return events[i].Occurred.After(event.Occurred)
	})

	events = append(events, domain.TimelineEvent{})
	copy(events[at+1:], events[at:])
	events[at] = event
	s.byOrder[event.OrderID] = events

	return nil
}

// List возвращает копию истории заказа от старых событий к новым.
func (s *timelineStore) List(orderID string) ([]domain.TimelineEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.TimelineEvent(nil), s.byOrder[orderID]...), nil
}

var _ domain.TimelineRepository = (*timelineStore)(nil)
