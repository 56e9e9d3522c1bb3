package services

import (
	"context"
	"encoding/json"
	"sync"

	"throttlelab/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// journal records store writes and navigations in call order.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

type fakeStore struct {
	name    string
	journal *journal
	failErr error

	mu     sync.Mutex
	values map[string][]byte
}

func newFakeStore(name string, j *journal) *fakeStore {
	return &fakeStore{name: name, journal: j, values: make(map[string][]byte)}
}

func (s *fakeStore) Get(ctx context.Context, key string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return domain.ErrKeyNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (s *fakeStore) Set(ctx context.Context, key string, value any) error {
	return s.SetAll(ctx, []domain.Entry{{Key: key, Value: value}})
}

func (s *fakeStore) SetAll(ctx context.Context, entries []domain.Entry) error {
	if s.failErr != nil {
		s.journal.add(s.name + ":fail")
		return s.failErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		raw, err := json.Marshal(e.Value)
		if err != nil {
			return err
		}
		s.values[e.Key] = raw
		s.journal.add(s.name + ":" + e.Key)
	}
	return nil
}

func (s *fakeStore) Ping(ctx context.Context) error { return nil }

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

type fakeNavigator struct {
	journal *journal
	targets []string
	err     error
}

func (n *fakeNavigator) Navigate(ctx context.Context, target string) error {
	n.targets = append(n.targets, target)
	n.journal.add("navigate:" + target)
	return n.err
}

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateExperiment(ctx context.Context, req domain.NewExperiment) (*domain.ExperimentRecord, error) {
	args := m.Called(ctx, req)
	if rec := args.Get(0); rec != nil {
		return rec.(*domain.ExperimentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordOutcome(outcome domain.Outcome) {
	m.Called(outcome)
}

func (m *mockRecorder) RecordAssignment(index int) {
	m.Called(index)
}

func (m *mockRecorder) ObservePersist(seconds float64) {
	m.Called(seconds)
}

func (m *mockRecorder) ObserveUpstream(seconds float64) {
	m.Called(seconds)
}
