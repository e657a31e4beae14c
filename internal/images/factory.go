package images

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opengallery/gallery/internal/config"
	"github.com/opengallery/gallery/internal/database"
)

// NewRepositoryFromConfig creates a record store based on the provided
// configuration. The returned cleanup closes the underlying connection.
func NewRepositoryFromConfig(ctx context.Context, cfg *config.Config) (Repository, func(context.Context) error, error) {
	switch cfg.Store.Driver {
	case "mongo":
		slog.Info("initializing mongo record store", "database", cfg.Store.MongoDatabase, "collection", cfg.Store.MongoCollection)

		client, err := ConnectMongo(ctx, &cfg.Store)
		if err != nil {
			return nil, nil, err
		}
		repo := NewMongoRepository(client, cfg.Store.MongoDatabase, cfg.Store.MongoCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return repo, client.Disconnect, nil

	case "postgres":
		slog.Info("initializing postgres record store", "database", cfg.Database.Name)

		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo, err := NewPostgresRepository(db)
		if err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		cleanup := func(context.Context) error { return database.Close(db) }
		return repo, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
