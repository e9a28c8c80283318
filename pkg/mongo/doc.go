// Package mongo stores sessions in MongoDB using the official v2 driver.
//
// New connects with retries. Storage implements the session Backend
// contract on a collection: documents are keyed by _id and carry the raw
// session bytes plus expires_at. EnsureIndexes adds a TTL index so MongoDB
// purges expired sessions on its own.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	storage := mongo.NewStorage(db.Collection(cfg.Collection))
//	if err := storage.EnsureIndexes(ctx); err != nil {
//	    return err
//	}
//
// Storage.Healthcheck returns a probe for readiness endpoints.
package mongo
