package main

import (
	"context"
	"fmt"
	"os"

	"bid-backend/internal/bidding"
	"bid-backend/internal/config"
	"bid-backend/internal/products"
	"bid-backend/internal/repository"
	"bid-backend/internal/repository/postgres"
	"bid-backend/internal/server"
	"bid-backend/internal/uploads"
	"bid-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	repo, cleanup, err := buildRepository(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	imageStore := uploads.NewDiskStore(cfg.Uploads.Dir)

	biddingSvc := bidding.NewBiddingService(repo)
	productSvc := products.NewProductService(repo, imageStore)

	router := server.SetupRouter(biddingSvc, productSvc, imageStore, server.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		UploadsDir:     cfg.Uploads.Dir,
		BaseURL:        cfg.Uploads.BaseURL,
	})

	addr := cfg.Addr()
	utils.Info("Starting auction server", map[string]any{
		"addr":    addr,
		"storage": cfg.Storage.Driver,
	})
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildRepository picks the storage backend from config. The postgres driver
// runs pending migrations before serving.
func buildRepository(ctx context.Context, cfg *config.Config) (repository.AuctionDB, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := postgres.RunMigrations(cfg.Postgres.DSN); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewRepo(pool), pool.Close, nil
	default:
		return repository.NewMemoryRepo(), func() {}, nil
	}
}
