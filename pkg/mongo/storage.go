package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	fieldValue     = "value"
	fieldExpiresAt = "expires_at"

	forever = 100 * 365 * 24 * time.Hour
)

type document struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Storage keeps sessions as documents keyed by _id. A TTL index on
// expires_at lets MongoDB purge stale sessions; until its monitor runs,
// Get filters them out.
type Storage struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewStorage creates a session backend over coll. Call EnsureIndexes once
// at startup.
func NewStorage(coll *mongo.Collection) *Storage {
	return &Storage{coll: coll, now: time.Now}
}

// EnsureIndexes creates the TTL index on expires_at.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, expiryIndex())
	return err
}

// Get returns the live value for key, or nil when missing or expired.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var doc document
	err := s.coll.FindOne(ctx, liveFilter(key, s.now())).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

// Set upserts key. A non-positive ttl keeps the document for a century.
func (s *Storage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = forever
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		upsertUpdate(value, s.now().Add(ttl)),
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// Destroy deletes key.
func (s *Storage) Destroy(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}

// Ping checks the deployment is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// Healthcheck returns a readiness probe that pings the deployment.
func (s *Storage) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := s.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func liveFilter(key string, now time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: key},
		{Key: fieldExpiresAt, Value: bson.D{{Key: "$gt", Value: now}}},
	}
}

func upsertUpdate(value []byte, expiresAt time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldValue, Value: value},
		{Key: fieldExpiresAt, Value: expiresAt},
	}}}
}

func expiryIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: fieldExpiresAt, Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("sessions_expires_at_ttl"),
	}
}
