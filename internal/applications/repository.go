// internal/applications/repository.go
package applications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"vacancy-workers/internal/models"
)

var (
	ErrConflict    = errors.New("record already exists")
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("repository unavailable")
	ErrTransport   = errors.New("alert transport unavailable")
)

// UnavailableError wraps a storage failure. It matches ErrUnavailable.
type UnavailableError struct {
	Reason string
	Err    error
}

func Unavailable(reason string, err error) *UnavailableError {
	return &UnavailableError{Reason: reason, Err: err}
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("repository unavailable: %s", e.Reason)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
func (e *UnavailableError) Unwrap() error        { return e.Err }

// TransportError wraps an alert delivery failure. It matches ErrTransport.
type TransportError struct {
	Reason string
	Err    error
}

func Transport(reason string, err error) *TransportError {
	return &TransportError{Reason: reason, Err: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("alert transport unavailable: %s", e.Reason)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }

// Repository persists application records. Implementations own any
// read-modify-write atomicity; the service adds no locking of its own.
type Repository interface {
	// Insert fails with ErrConflict when the id is taken.
	Insert(ctx context.Context, record Record) (Record, error)
	// Update fails with ErrNotFound when the id is unknown.
	Update(ctx context.Context, record Record) error
	// Fetch returns (nil, nil) for an unknown id.
	Fetch(ctx context.Context, id ApplicationID) (*Record, error)
	// Pending lists records awaiting manual review, oldest id first.
	Pending(ctx context.Context, limit int) ([]Record, error)
}

// AlertPublisher delivers templated alerts. Failures should be TransportErrors.
type AlertPublisher interface {
	Publish(ctx context.Context, alert models.Alert) error
}

// MemoryRepository is a process-local Repository. It is also an
// IDGenerator whose sequence stays ahead of every stored id.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[ApplicationID]Record
	seq     uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[ApplicationID]Record)}
}

func (r *MemoryRepository) Insert(_ context.Context, record Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID()]; exists {
		return Record{}, ErrConflict
	}
	r.records[record.ID()] = record
	if n, ok := ParseID(record.ID()); ok && n > r.seq {
		r.seq = n
	}
	return record, nil
}

func (r *MemoryRepository) NextID(context.Context) (ApplicationID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	return FormatID(r.seq), nil
}

func (r *MemoryRepository) Update(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID()]; !exists {
		return ErrNotFound
	}
	r.records[record.ID()] = record
	return nil
}

func (r *MemoryRepository) Fetch(_ context.Context, id ApplicationID) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *MemoryRepository) Pending(_ context.Context, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []Record
	for _, record := range r.records {
		if record.Status == StatusUnderReview {
			pending = append(pending, record)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID() < pending[j].ID() })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// MemoryAlerts records every published alert.
type MemoryAlerts struct {
	mu     sync.Mutex
	events []models.Alert
	// Err, when set, is returned by Publish instead of recording.
	Err error
}

func NewMemoryAlerts() *MemoryAlerts { return &MemoryAlerts{} }

func (a *MemoryAlerts) Publish(_ context.Context, alert models.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Err != nil {
		return a.Err
	}
	a.events = append(a.events, alert)
	return nil
}

func (a *MemoryAlerts) Events() []models.Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Alert(nil), a.events...)
}
