package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/ngolasuite/ngola/pkg/async"
	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/repository"
)

// Query narrows Recent. Limit defaults to 10.
type Query struct {
	UserID    string
	ProjectID string
	Limit     int
}

// Sink stores activity entries.
type Sink interface {
	Append(ctx context.Context, e domain.ActivityEntry) (domain.ActivityEntry, error)
	Recent(ctx context.Context, q Query) ([]domain.ActivityEntry, error)
}

// Recorder appends entries to the primary sink and copies them to mirrors.
type Recorder struct {
	primary Sink
	mirrors []Sink
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Recorder)

// WithMirror adds a sink that receives a copy of every recorded entry.
// Mirror failures are logged only.
func WithMirror(s Sink) Option {
	return func(r *Recorder) {
		if s != nil {
			r.mirrors = append(r.mirrors, s)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder panics on a nil primary sink.
func NewRecorder(primary Sink, opts ...Option) *Recorder {
	if primary == nil {
		panic("activity: primary sink is required")
	}
	r := &Recorder{primary: primary, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("activity"))
	return r
}

// Record stores e in the primary sink and waits for the mirrors. Only the
// primary sink's error is returned.
func (r *Recorder) Record(ctx context.Context, e domain.ActivityEntry) (domain.ActivityEntry, error) {
	if e.Action == "" {
		return domain.ActivityEntry{}, ErrMissingAction
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}

	saved, err := r.primary.Append(ctx, e)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to record activity",
			logger.Event(e.Action),
			logger.UserID(e.UserID),
			logger.Error(err),
		)
		return domain.ActivityEntry{}, err
	}
	if len(r.mirrors) == 0 {
		return saved, nil
	}

	futures := make([]*async.Future[domain.ActivityEntry], 0, len(r.mirrors))
	for _, m := range r.mirrors {
		futures = append(futures, async.Async(ctx, saved, m.Append))
	}
	for _, f := range futures {
		if _, err := f.Await(); err != nil {
			r.logger.WarnContext(ctx, "activity mirror failed",
				logger.Event(saved.Action),
				logger.Error(err),
			)
		}
	}
	return saved, nil
}

// Recent reads from the primary sink.
func (r *Recorder) Recent(ctx context.Context, q Query) ([]domain.ActivityEntry, error) {
	return r.primary.Recent(ctx, q)
}

// StoreSink keeps entries in the activity_logs table.
type StoreSink struct {
	repo *repository.Activity
}

var _ Sink = (*StoreSink)(nil)

func NewStoreSink(repo *repository.Activity) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Append(ctx context.Context, e domain.ActivityEntry) (domain.ActivityEntry, error) {
	return s.repo.Append(ctx, e)
}

func (s *StoreSink) Recent(ctx context.Context, q Query) ([]domain.ActivityEntry, error) {
	return s.repo.Recent(ctx, repository.ActivityQuery(q))
}
