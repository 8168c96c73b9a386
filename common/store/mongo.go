package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kea-dealership/event-core/common/config"
)

// OpenMongo connects to cfg's database and verifies connectivity with
// a bounded Ping, grounded on the teacher's orders/main.go
// connectToMongoDB helper.
func OpenMongo(ctx context.Context, cfg config.MongoConfig, useRoot bool) (*mongo.Database, func(context.Context) error, error) {
	user, pass := cfg.AppUsername, cfg.AppPassword
	if useRoot {
		user, pass = cfg.RootUsername, cfg.RootPassword
	}

	uri := fmt.Sprintf("mongodb://%s:%s@%s:%s", user, pass, cfg.Host, cfg.Port)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(cfg.Name), client.Disconnect, nil
}
