// Package corpus owns every mutation of a user's accumulated text.
package corpus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docchat/pkg/domain"
)

// DefaultMaxBytes bounds the cumulative corpus size when the manager is
// constructed without an explicit limit.
const DefaultMaxBytes = 10 << 20

// Separator joins consecutive uploads so word boundaries across documents
// are never silently merged.
const Separator = "\n"

// Storage is the slice of the persistence layer the manager needs.
// Implementations must make each call atomic per owner key.
type Storage interface {
	GetCorpus(ownerID string) (domain.Corpus, bool, error)
	PutCorpus(domain.Corpus) error
	DeleteCorpus(ownerID string) (bool, error)
}

// Manager serializes read-modify-write cycles per owner while letting
// different owners proceed concurrently. It is the sole mutator of
// persisted corpus state.
type Manager struct {
	storage  Storage
	maxBytes int64
	locks    *keyedLock
}

// New constructs a manager. maxBytes <= 0 selects DefaultMaxBytes.
func New(storage Storage, maxBytes int64) *Manager {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Manager{
		storage:  storage,
		maxBytes: maxBytes,
		locks:    newKeyedLock(),
	}
}

// Combine joins existing corpus text with newly extracted text. Pure; the
// append invariant (ordered concatenation with separators) lives here.
func Combine(old, next string) string {
	if old == "" {
		return next
	}
	return old + Separator + next
}

// CreateOrAppend creates the corpus on first write and appends on later
// ones. Empty extractions never create or mutate a corpus. A failed append
// leaves the prior state fully intact.
func (m *Manager) CreateOrAppend(ctx context.Context, ownerID, newText string) (domain.Corpus, error) {
	if ownerID == "" {
		return domain.Corpus{}, fmt.Errorf("%w: owner id required", domain.ErrValidation)
	}
	if strings.TrimSpace(newText) == "" {
		return domain.Corpus{}, domain.ErrEmptyExtraction
	}
	if err := m.locks.acquire(ctx, ownerID); err != nil {
		return domain.Corpus{}, err
	}
	defer m.locks.release(ownerID)

	current, exists, err := m.storage.GetCorpus(ownerID)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("read corpus: %w", err)
	}
	combined := newText
	if exists {
		combined = Combine(current.Text, newText)
	}
	size := int64(len(combined))
	if size > m.maxBytes {
		return domain.Corpus{}, fmt.Errorf("%w: %d bytes would exceed the %d byte limit",
			domain.ErrQuotaExceeded, size, m.maxBytes)
	}
	next := domain.Corpus{
		OwnerID:   ownerID,
		Text:      combined,
		ByteSize:  size,
		UpdatedAt: time.Now().UTC(),
	}
	if err := m.storage.PutCorpus(next); err != nil {
		return domain.Corpus{}, fmt.Errorf("write corpus: %w", err)
	}
	return next, nil
}

// Read returns the current corpus, or domain.ErrNotFound when the owner has
// never successfully uploaded content.
func (m *Manager) Read(ctx context.Context, ownerID string) (domain.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return domain.Corpus{}, err
	}
	c, exists, err := m.storage.GetCorpus(ownerID)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("read corpus: %w", err)
	}
	if !exists {
		return domain.Corpus{}, domain.ErrNotFound
	}
	return c, nil
}

// Delete removes the corpus entirely and reports whether one existed.
// Idempotent: deleting a missing corpus returns false, not an error.
func (m *Manager) Delete(ctx context.Context, ownerID string) (bool, error) {
	if err := m.locks.acquire(ctx, ownerID); err != nil {
		return false, err
	}
	defer m.locks.release(ownerID)
	existed, err := m.storage.DeleteCorpus(ownerID)
	if err != nil {
		return false, fmt.Errorf("delete corpus: %w", err)
	}
	return existed, nil
}
