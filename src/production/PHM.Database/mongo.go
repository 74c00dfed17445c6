package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo opens the raw reading archive and pings the primary
func ConnectMongo(cfg config.MongoConfig, timeout time.Duration) (*mongo.Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("MONGODB_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	// Atlas SRV records require TLS
	if strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		clientOptions.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	clientOptions.SetServerSelectionTimeout(timeout)
	clientOptions.SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// RawReadingsCollection returns the configured archive collection
func RawReadingsCollection(client *mongo.Client, cfg config.MongoConfig) *mongo.Collection {
	return client.Database(cfg.Database).Collection(cfg.Collection)
}
