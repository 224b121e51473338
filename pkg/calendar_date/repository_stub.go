package calendar_date

import (
	"context"
	"slices"
	"sync"
)

// StoreStub is an in-memory Store that applies overlap matching and counts calls.
type StoreStub struct {
	mu        sync.Mutex
	rows      []Row
	err       error
	calls     int
	block     chan struct{}
	lastQuery []string
}

func NewStoreStub() *StoreStub {
	return &StoreStub{}
}

func (s *StoreStub) SetRows(rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

func (s *StoreStub) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Block makes FindByNiches wait until the returned function is called.
func (s *StoreStub) Block() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.block = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (s *StoreStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StoreStub) LastQuery() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

func (s *StoreStub) FindByNiches(ctx context.Context, niches []string) ([]Row, error) {
	s.mu.Lock()
	s.calls++
	s.lastQuery = niches
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := make([]Row, 0)
	for _, row := range s.rows {
		if slices.ContainsFunc(row.Niches, func(n string) bool { return slices.Contains(niches, n) }) {
			result = append(result, row)
		}
	}
	return result, nil
}

func (s *StoreStub) ListNiches(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var niches []string
	for _, row := range s.rows {
		for _, n := range row.Niches {
			if !slices.Contains(niches, n) {
				niches = append(niches, n)
			}
		}
	}
	slices.Sort(niches)
	return niches, nil
}

func (s *StoreStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	s.err = nil
	s.calls = 0
	s.block = nil
	s.lastQuery = nil
}
