package billing

import (
	"context"
	"sync"
	"time"
)

// RecordStatus mirrors the provider's subscription status.
type RecordStatus string

const (
	RecordTrialing  RecordStatus = "trialing"
	RecordActive    RecordStatus = "active"
	RecordPastDue   RecordStatus = "past_due"
	RecordPaused    RecordStatus = "paused"
	RecordCancelled RecordStatus = "canceled"
)

// Record is the locally stored view of a customer's provider subscription.
// There is at most one record per local customer.
type Record struct {
	CustomerID         string // local user ID, primary key
	ProviderCustomerID string
	SubscriptionID     string
	Status             RecordStatus
	PriceRef           string
	ProductRef         string
	PeriodEnd          *time.Time
	EventAt            *time.Time // occurred-at of the last subscription event applied
	UpdatedAt          time.Time
}

// Outdates reports whether the record already reflects a subscription event
// that occurred after e. Events without a time never count as older.
func (r Record) Outdates(e Event) bool {
	return r.EventAt != nil && !e.OccurredAt.IsZero() && e.OccurredAt.Before(*r.EventAt)
}

// Active reports whether the record grants access to its product.
func (r Record) Active() bool {
	return r.Status == RecordActive || r.Status == RecordTrialing
}

// SubscriptionStatus converts the record into a subscription check answer.
func (r Record) SubscriptionStatus() Status {
	if !r.Active() {
		return Status{}
	}
	return Status{
		Subscribed:      true,
		ProductRef:      r.ProductRef,
		SubscriptionEnd: r.PeriodEnd,
	}
}

// RecordStore persists billing records.
type RecordStore interface {
	// Get returns ErrRecordNotFound when the customer has no record.
	Get(ctx context.Context, customerID string) (*Record, error)
	// Save creates or replaces the record keyed by CustomerID.
	Save(ctx context.Context, record *Record) error
}

// MemoryRecordStore is a RecordStore kept in process memory.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRecordStore creates an empty store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]Record)}
}

func (s *MemoryRecordStore) Get(_ context.Context, customerID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[customerID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &r, nil
}

func (s *MemoryRecordStore) Save(_ context.Context, record *Record) error {
	if record == nil || record.CustomerID == "" {
		return ErrRecordInvalid
	}

	s.mu.Lock()
	s.records[record.CustomerID] = *record
	s.mu.Unlock()
	return nil
}
