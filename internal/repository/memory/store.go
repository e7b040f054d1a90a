// Package memory provides in-process batch and submission stores.
//
// States are kept in their JSON form, so a caller never shares slices with
// the store and every write goes through the same encoding as the
// PostgreSQL store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/domain"
	apperrors "github.com/abeyonalaja/waste-tracking-service-sub010/internal/pkg/errors"
)

type key struct {
	accountID string
	id        string
}

type record struct {
	state   []byte
	status  domain.BatchStatus
	at      time.Time
	version int64
}

// Store is a batch.Store backed by maps.
type Store struct {
	mu       sync.RWMutex
	batches  map[key]record
	contents map[key]codec.Content
}

var _ batch.Store = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		batches:  make(map[key]record),
		contents: make(map[key]codec.Content),
	}
}

func encode(b *domain.Batch, version int64) (record, error) {
	state, err := domain.MarshalState(b.State)
	if err != nil {
		return record{}, err
	}
	return record{state: state, status: b.State.Status(), at: b.State.At(), version: version}, nil
}

func decode(k key, r record) (*domain.Batch, error) {
	state, err := domain.UnmarshalState(r.state)
	if err != nil {
		return nil, err
	}
	return &domain.Batch{ID: k.id, AccountID: k.accountID, State: state, Version: r.version}, nil
}

func copyContent(c codec.Content) codec.Content {
	c.Value = append([]byte(nil), c.Value...)
	return c
}

// Create implements batch.Store.
func (s *Store) Create(_ context.Context, b *domain.Batch, content codec.Content) error {
	k := key{b.AccountID, b.ID}
	r, err := encode(b, 1)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.batches[k]; exists {
		return fmt.Errorf("create batch %s: %w", b.ID, apperrors.ErrConflict)
	}
	s.contents[k] = copyContent(content)
	s.batches[k] = r
	b.Version = 1
	return nil
}

// Get implements batch.Store.
func (s *Store) Get(_ context.Context, accountID, id string) (*domain.Batch, error) {
	k := key{accountID, id}
	s.mu.RLock()
	r, ok := s.batches[k]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, apperrors.ErrNotFound)
	}
	return decode(k, r)
}

// Update implements batch.Store.
func (s *Store) Update(_ context.Context, b *domain.Batch) error {
	return s.write(b, nil)
}

// ReplaceContent implements batch.Store.
func (s *Store) ReplaceContent(_ context.Context, b *domain.Batch, content codec.Content) error {
	return s.write(b, &content)
}

func (s *Store) write(b *domain.Batch, content *codec.Content) error {
	k := key{b.AccountID, b.ID}
	r, err := encode(b, b.Version+1)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.batches[k]
	if !ok {
		return fmt.Errorf("batch %s: %w", b.ID, apperrors.ErrNotFound)
	}
	if current.version != b.Version {
		return fmt.Errorf("batch %s at version %d, have %d: %w",
			b.ID, current.version, b.Version, apperrors.ErrVersionConflict)
	}
	if content != nil {
		s.contents[k] = copyContent(*content)
	}
	s.batches[k] = r
	b.Version = r.version
	return nil
}

// Content implements batch.Store.
func (s *Store) Content(_ context.Context, accountID, id string) (codec.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contents[key{accountID, id}]
	if !ok {
		return codec.Content{}, fmt.Errorf("content of batch %s: %w", id, apperrors.ErrNotFound)
	}
	return copyContent(c), nil
}

// ListStale implements batch.Store.
func (s *Store) ListStale(_ context.Context, statuses []domain.BatchStatus, cutoff time.Time, limit int) ([]*domain.Batch, error) {
	want := make(map[domain.BatchStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}

	type hit struct {
		k key
		r record
	}
	var hits []hit
	s.mu.RLock()
	for k, r := range s.batches {
		if want[r.status] && r.at.Before(cutoff) {
			hits = append(hits, hit{k, r})
		}
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].r.at.Before(hits[j].r.at) })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]*domain.Batch, 0, len(hits))
	for _, h := range hits {
		b, err := decode(h.k, h.r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
