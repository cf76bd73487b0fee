package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/baytides/climate-quest/pkg/content"
)

// MockStore is an in-memory ContentStore for testing
type MockStore struct {
	mu        sync.RWMutex
	catalog   content.Catalog
	locations []content.Location
	manifest  *Manifest
	pingError error
}

// Ensure MockStore implements ContentStore interface
var _ ContentStore = (*MockStore)(nil)

// NewMockStore creates a new, empty mock store
func NewMockStore() *MockStore {
	return &MockStore{}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStore) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) Publish(ctx context.Context, c *content.Catalog, locations []content.Location, manifest Manifest) error {
	if c == nil {
		return errors.New("catalog cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = content.Catalog{
		Questions: append([]content.Question(nil), c.Questions...),
		Events:    append([]content.Event(nil), c.Events...),
		Summaries: append([]content.Summary(nil), c.Summaries...),
	}
	m.locations = append([]content.Location(nil), locations...)
	m.manifest = &manifest
	return nil
}

func (m *MockStore) Locations(ctx context.Context) ([]content.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]content.Location{}, m.locations...), nil
}

func (m *MockStore) Location(ctx context.Context, id string) (content.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.locations {
		if l.ID == id {
			return l, nil
		}
	}
	return content.Location{}, ErrNotFound
}

func (m *MockStore) QuestionsForLocation(ctx context.Context, locationID string, band content.GradeBand) ([]content.Question, error) {
	if _, err := m.Location(ctx, locationID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]content.Question{}, m.catalog.QuestionsForLocation(locationID, band)...), nil
}

func (m *MockStore) EventsForLocation(ctx context.Context, locationID string, band content.GradeBand) ([]content.Event, error) {
	if _, err := m.Location(ctx, locationID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]content.Event{}, m.catalog.EventsForLocation(locationID, band)...), nil
}

func (m *MockStore) SummaryForLocation(ctx context.Context, locationID string) (content.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.catalog.SummaryForLocation(locationID)
	if !ok {
		return content.Summary{}, ErrNotFound
	}
	return s, nil
}

func (m *MockStore) LatestManifest(ctx context.Context) (Manifest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.manifest == nil {
		return Manifest{}, ErrNotFound
	}
	return *m.manifest, nil
}
