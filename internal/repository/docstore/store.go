// Package docstore persists extracted sentences in an embedded badger
// database via badgerhold. It is the system of record: identities are
// minted here and list queries run against it.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

// Store is a badgerhold-backed sentence repository.
type Store struct {
	db     *badgerhold.Store
	logger *zap.Logger
}

// Open opens (or creates) the document store at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create document store dir: %w", err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil

	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open document store at %s: %w", path, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close flushes and closes the underlying badger database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close document store: %w", err)
	}
	return nil
}

// Ping checks that the underlying badger database accepts reads.
func (s *Store) Ping(ctx context.Context) error {
	err := s.db.Badger().View(func(txn *badger.Txn) error { return nil })
	if err != nil {
		return fmt.Errorf("ping document store: %w", err)
	}
	return nil
}

// Insert stores a new record. An empty ID is assigned a time-ordered UUID,
// so the identity order follows the creation order.
func (s *Store) Insert(ctx context.Context, rec *domain.ExtractedSentence) error {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("mint record id: %w", err)
		}
		rec.ID = id.String()
	}
	if err := s.db.Insert(rec.ID, *rec); err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

// FindByID fetches a record by identity.
func (s *Store) FindByID(ctx context.Context, id string) (domain.ExtractedSentence, error) {
	var rec domain.ExtractedSentence
	if err := s.db.Get(id, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ExtractedSentence{}, domain.ErrItemNotFound
		}
		return domain.ExtractedSentence{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes a record by identity.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.Delete(id, domain.ExtractedSentence{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// IncrementCounter bumps the submission counter of a record.
// Read-modify-write: concurrent bumps are serialized by the caller.
func (s *Store) IncrementCounter(ctx context.Context, id string, by int64) error {
	var rec domain.ExtractedSentence
	if err := s.db.Get(id, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("get record %s: %w", id, err)
	}
	rec.Counter += by
	if err := s.db.Update(id, rec); err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return nil
}

// Count returns the number of records matching the query predicates.
func (s *Store) Count(ctx context.Context, fq filter.Query) (int, error) {
	q, err := Translate(fq)
	if err != nil {
		return 0, err
	}
	n, err := s.db.Count(&domain.ExtractedSentence{}, q)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return int(n), nil
}

// Find returns the page of records selected by the query, in sort order.
func (s *Store) Find(ctx context.Context, fq filter.Query) ([]domain.ExtractedSentence, error) {
	q, err := Translate(fq)
	if err != nil {
		return nil, err
	}
	q = q.Skip(fq.Skip()).Limit(fq.PageSize())

	var recs []domain.ExtractedSentence
	if err := s.db.Find(&recs, q); err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	return recs, nil
}
