package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lakehouselib/lakehouse/config"
	"github.com/lakehouselib/lakehouse/devserver"
	"github.com/lakehouselib/lakehouse/devserver/blobstore"
	"github.com/lakehouselib/lakehouse/devserver/database"
	"github.com/lakehouselib/lakehouse/devserver/users"
)

// openService connects the catalog, opens the blob directory and assembles
// the service. The returned function releases both.
func openService(ctx context.Context, cfg *config.Config) (*devserver.Service, func(), error) {
	repo, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type, "table", cfg.Database.Table)

	if err = os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	closeAll := func() {
		_ = root.Close()
		closeDB()
	}

	userStore, err := users.NewStore(cfg.Auth.Users)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("load users: %w", err)
	}
	if userStore.Len() == 0 {
		slog.Warn("no users configured, every login will fail")
	}

	service, err := devserver.NewService(devserver.ServiceConfig{
		Repo:   repo,
		Blobs:  blobstore.New(root),
		Users:  userStore,
		Tokens: devserver.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Signer: devserver.NewSigner(cfg.Signing.AccessKey, cfg.Signing.SecretKey, cfg.Server.BaseURL(), cfg.Signing.Expires),
		Logger: slog.Default(),
	})
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, closeAll, nil
}
