package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
// Records are deep-copied on the way in and out.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	order   []string
	now     func() time.Time
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.Record),
		now:     time.Now,
	}
}

// Write stores a new record and returns its identifier.
func (s *RecordStore) Write(ctx context.Context, data *domain.Table, metadata map[string]any, specs []domain.Spec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("%w: record has no data", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	rec := domain.Record{
		ID:              uuid.NewString(),
		StructureFamily: domain.StructureFamilyDataframe,
		Specs:           slices.Clone(specs),
		Data:            data.Clone(),
		Metadata:        domain.CloneMetadata(metadata),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec.ID, nil
}

// Records yields a copy of every record in write order. Records written
// during the iteration are not yielded.
func (s *RecordStore) Records(ctx context.Context) iter.Seq2[*domain.Record, error] {
	return func(yield func(*domain.Record, error) bool) {
		s.mu.RLock()
		ids := slices.Clone(s.order)
		s.mu.RUnlock()

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			rec, err := s.Get(ctx, id)
			if err != nil {
				// Deleted since the snapshot.
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(_ context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return copyRecord(rec), nil
}

// Search returns records whose metadata matches the query, in write order.
func (s *RecordStore) Search(ctx context.Context, query domain.RecordQuery) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Record
	for _, id := range s.order {
		rec := s.records[id]
		if query.Matches(rec.Metadata) {
			result = append(result, *copyRecord(rec))
		}
	}
	return result, nil
}

// UpdateMetadata replaces the metadata document of a record.
func (s *RecordStore) UpdateMetadata(_ context.Context, id string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	rec.Metadata = domain.CloneMetadata(metadata)
	rec.UpdatedAt = s.now().UTC()
	s.records[id] = rec
	return nil
}

// Delete removes a record.
func (s *RecordStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// Count returns the number of stored records.
func (s *RecordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func copyRecord(rec domain.Record) *domain.Record {
	out := rec
	out.Specs = slices.Clone(rec.Specs)
	out.Data = rec.Data.Clone()
	out.Metadata = domain.CloneMetadata(rec.Metadata)
	return &out
}
