package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/anams/page-server/page-server/internal/host"
	"github.com/anams/page-server/pkg/config"
	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/registry"
	"github.com/anams/page-server/pkg/storage"
)

type Config struct {
	config.CommonConfig `mapstructure:",squash"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := config.Load(v, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.LoadStorageConfigFromEnv(&cfg.Storage)
	logger.SetLevel(cfg.Service.LogLevel)
	return &cfg, nil
}

// assetDir is the absolute directory the file backend reads from
func assetDir(cfg *Config) (string, error) {
	dir, err := document.BaseDir(cfg.Assets.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset directory: %w", err)
	}
	return dir, nil
}

func newS3Store(ctx context.Context, cfg *Config, log *logger.Logger) (*storage.S3Storage, error) {
	log.Info("Connecting to S3 storage",
		"host", cfg.Storage.BucketHost,
		"port", cfg.Storage.BucketPort,
		"bucket", cfg.Storage.BucketName)

	s3Store, err := storage.NewS3Storage(ctx, storage.S3Config{
		BucketHost:      cfg.Storage.BucketHost,
		BucketPort:      cfg.Storage.BucketPort,
		BucketName:      cfg.Storage.BucketName,
		UseSSL:          cfg.Storage.UseSSL,
		InsecureTLS:     cfg.Storage.InsecureTLS,
		Region:          cfg.Storage.Region,
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	return s3Store, nil
}

// newStore builds the configured asset backend. hint names the place
// users should look when a document is missing.
func newStore(ctx context.Context, cfg *Config, log *logger.Logger) (store storage.AssetStorage, hint string, err error) {
	switch cfg.Assets.Backend {
	case config.BackendS3:
		s3Store, err := newS3Store(ctx, cfg, log)
		if err != nil {
			return nil, "", err
		}
		return s3Store, "s3://" + cfg.Storage.BucketName + "/" + storage.PagePrefix, nil
	case config.BackendMemory:
		log.Info("Using in-memory demo pages")
		return storage.NewDemoStorage(), "demo", nil
	default:
		dir, err := assetDir(cfg)
		if err != nil {
			return nil, "", err
		}
		fileStore, err := storage.NewFileStorage(dir)
		if err != nil {
			return nil, "", err
		}
		return fileStore, dir, nil
	}
}

func newRegistry(cfg *Config, store storage.AssetStorage) (registry.Registry, error) {
	if cfg.Assets.Registry == config.RegistryDynamic {
		return registry.NewDynamic(store, cfg.Assets.Suffix, logger.New(logger.ComponentRegistry)), nil
	}
	entries := make([]registry.Entry, 0, len(cfg.Documents))
	for _, d := range cfg.Documents {
		entries = append(entries, registry.Entry{Name: d.Name, ID: document.ID(d.ID)})
	}
	reg, err := registry.NewStatic(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid document list: %w", err)
	}
	return reg, nil
}

func routesFrom(docs []config.DocumentConfig) []host.Route {
	var routes []host.Route
	for _, d := range docs {
		for _, p := range d.Routes {
			routes = append(routes, host.Route{Path: p, ID: document.ID(d.ID)})
		}
	}
	return routes
}
