package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/ngolasuite/ngola/pkg/datastore"
)

// Table names.
const (
	tableProfiles     = "profiles"
	tableTemplates    = "project_templates"
	tableProjects     = "projects"
	tableTasks        = "tasks"
	tableResources    = "resources"
	tableTeams        = "teams"
	tableMembers      = "team_members"
	tableActivity     = "activity_logs"
	tableUsers        = "users"
	tableSubscription = "billing_subscriptions"
)

// Repositories bundles every repository over one store.
type Repositories struct {
	Projects  *Projects
	Tasks     *Tasks
	Resources *Resources
	Teams     *Teams
	Profiles  *Profiles
	Templates *Templates
	Activity  *Activity
	Users     *Users
	Billing   *BillingRecords
}

// Option configures the shared repository settings.
type Option func(*base)

// WithClock overrides the time source for created and updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides how new entity IDs are made.
func WithIDGenerator(fn func() string) Option {
	return func(b *base) {
		if fn != nil {
			b.newID = fn
		}
	}
}

type base struct {
	store datastore.Store
	now   func() time.Time
	newID func() string
}

func newBase(store datastore.Store, opts ...Option) base {
	b := base{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// New builds all repositories over store.
func New(store datastore.Store, opts ...Option) *Repositories {
	if store == nil {
		panic("repository: nil store")
	}
	b := newBase(store, opts...)
	return &Repositories{
		Projects:  &Projects{b},
		Tasks:     &Tasks{b},
		Resources: &Resources{b},
		Teams:     &Teams{b},
		Profiles:  &Profiles{b},
		Templates: &Templates{b},
		Activity:  &Activity{b},
		Users:     &Users{b},
		Billing:   &BillingRecords{b},
	}
}

// byID is the filter for a primary key lookup.
func byID(id string) datastore.Filter { return datastore.Where("id", id) }

func newestFirst() []datastore.Order {
	return []datastore.Order{{Column: "created_at", Desc: true}, {Column: "id"}}
}

// mapRows converts every record with fn, stopping at the first failure.
func mapRows[T any](recs []datastore.Record, fn func(datastore.Record) (T, error)) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := fn(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
