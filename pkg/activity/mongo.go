package activity

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ngolasuite/ngola/pkg/domain"
)

// MongoConfig configures the MongoDB mirror. An empty URL disables it.
type MongoConfig struct {
	ConnectionURL   string        `env:"MONGODB_URL"`                                   // ConnectionURL is the URL of the database.
	Database        string        `env:"MONGODB_DATABASE" envDefault:"ngola"`           // Database holds the activity collection.
	Collection      string        `env:"MONGODB_COLLECTION" envDefault:"activity_logs"` // Collection stores one document per entry.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`      // ConnectTimeout is the timeout for connecting to the database.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`        // MaxPoolSize is the maximum number of connections in the connection pool.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`          // MinPoolSize is the minimum number of connections in the connection pool.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`  // MaxConnIdleTime is how long a pooled connection may stay idle.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`         // RetryAttempts is the number of connection attempts.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`        // RetryInterval is the wait between attempts.
}

// Enabled reports whether a MongoDB URL is configured.
func (c MongoConfig) Enabled() bool { return c.ConnectionURL != "" }

// ConnectMongo returns a client once the server answers a ping.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, errors.Join(ErrFailedToConnectToMongo, errors.New("empty connection URL"))
	}

	var lastErr error
	for i := range max(cfg.RetryAttempts, 1) {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetServerSelectionTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime),
		)
		if err == nil {
			if lastErr = client.Ping(ctx, nil); lastErr == nil {
				return client, nil
			}
			_ = client.Disconnect(context.WithoutCancel(ctx))
		} else {
			lastErr = err
		}

		if i == cfg.RetryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

// MongoHealthcheck returns a closure that pings the server.
func MongoHealthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

type mongoEntry struct {
	ID        string         `bson:"_id"`
	Action    string         `bson:"action"`
	UserID    string         `bson:"user_id,omitempty"`
	ProjectID string         `bson:"project_id,omitempty"`
	TaskID    string         `bson:"task_id,omitempty"`
	Details   map[string]any `bson:"details,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

func (m mongoEntry) entry() domain.ActivityEntry {
	return domain.ActivityEntry{
		ID:        m.ID,
		Action:    m.Action,
		UserID:    m.UserID,
		ProjectID: m.ProjectID,
		TaskID:    m.TaskID,
		Details:   m.Details,
		CreatedAt: m.CreatedAt,
	}
}

// MongoSink stores entries in a MongoDB collection.
type MongoSink struct {
	coll *mongo.Collection
}

var _ Sink = (*MongoSink)(nil)

func NewMongoSink(client *mongo.Client, cfg MongoConfig) *MongoSink {
	return &MongoSink{coll: client.Database(cfg.Database).Collection(cfg.Collection)}
}

// EnsureIndexes creates the per-user and per-project indexes Recent relies on.
func (s *MongoSink) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (s *MongoSink) Append(ctx context.Context, e domain.ActivityEntry) (domain.ActivityEntry, error) {
	if e.ID == "" {
		e.ID = bson.NewObjectID().Hex()
	}
	doc := mongoEntry{
		ID:        e.ID,
		Action:    e.Action,
		UserID:    e.UserID,
		ProjectID: e.ProjectID,
		TaskID:    e.TaskID,
		Details:   e.Details,
		CreatedAt: e.CreatedAt.UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return domain.ActivityEntry{}, err
	}
	return e, nil
}

func (s *MongoSink) Recent(ctx context.Context, q Query) ([]domain.ActivityEntry, error) {
	filter := bson.D{}
	if q.UserID != "" {
		filter = append(filter, bson.E{Key: "user_id", Value: q.UserID})
	}
	if q.ProjectID != "" {
		filter = append(filter, bson.E{Key: "project_id", Value: q.ProjectID})
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	cur, err := s.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	var docs []mongoEntry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.ActivityEntry, len(docs))
	for i, d := range docs {
		out[i] = d.entry()
	}
	return out, nil
}
