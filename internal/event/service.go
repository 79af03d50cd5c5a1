package event

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Service defines event persistence operations. The event name doubles as a
// uniqueness key: creating a second event with an existing name conflicts.
type Service interface {
	Create(ctx context.Context, e Event) (Event, error)
	Get(ctx context.Context, id int64) (Event, error)
	GetByName(ctx context.Context, name string) (Event, error)
	Update(ctx context.Context, id int64, e Event) (Event, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Event, error)
}

// Validate checks field presence for create and update requests.
func Validate(e Event) error {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Description) == "" ||
		strings.TrimSpace(e.Location) == "" || strings.TrimSpace(e.Date) == "" ||
		strings.TrimSpace(e.Time) == "" {
		return fmt.Errorf("%w: name, description, location, date and time are required", ErrInvalidInput)
	}
	return nil
}

// InMemory implements Service with in-process concurrency safety. Used by
// tests and by cmd/api when no DSN is configured.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	events map[int64]*Event
	byName map[string]int64
}

var _ Service = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		nextID: 1,
		events: make(map[int64]*Event),
		byName: make(map[string]int64),
	}
}

func (s *InMemory) Create(ctx context.Context, e Event) (Event, error) {
	if err := Validate(e); err != nil {
		return Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameKey(e.Name)
	if _, ok := s.byName[key]; ok {
		return Event{}, ErrAlreadyExists
	}
	e.ID = s.nextID
	s.nextID++
	e.CreatedAt = time.Now().UTC()
	stored := e
	s.events[e.ID] = &stored
	s.byName[key] = e.ID
	return e, nil
}

func (s *InMemory) Get(ctx context.Context, id int64) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return *e, nil
}

func (s *InMemory) GetByName(ctx context.Context, name string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[nameKey(name)]
	if !ok {
		return Event{}, ErrNotFound
	}
	return *s.events[id], nil
}

func (s *InMemory) Update(ctx context.Context, id int64, e Event) (Event, error) {
	if err := Validate(e); err != nil {
		return Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	newKey := nameKey(e.Name)
	if other, ok := s.byName[newKey]; ok && other != id {
		return Event{}, ErrAlreadyExists
	}

	delete(s.byName, nameKey(current.Name))
	current.Name = e.Name
	current.Description = e.Description
	current.Location = e.Location
	current.Date = e.Date
	current.Time = e.Time
	s.byName[newKey] = id
	return *current, nil
}

func (s *InMemory) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byName, nameKey(e.Name))
	delete(s.events, id)
	return nil
}

func (s *InMemory) List(ctx context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Event, 0, len(s.events))
	for id := int64(1); id < s.nextID; id++ {
		if e, ok := s.events[id]; ok {
			res = append(res, *e)
		}
	}
	return res, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
