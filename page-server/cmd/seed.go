package cmd

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/storage"
)

var (
	seedIfEmpty bool
	seedFrom    string
	seedDemo    bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upload the local asset directory to the bucket",
	Long: `Seed the S3 bucket with the documents from the local asset directory.

Only files with the configured suffix are uploaded, under the pages/ prefix.
It's typically run as an init container before serving with --backend s3.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedIfEmpty, "if-empty", false, "Only seed if the bucket is empty")
	seedCmd.Flags().StringVar(&seedFrom, "from", "", "Directory to upload (defaults to the asset directory)")
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "Upload the built-in demo pages instead of a directory")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(logger.ComponentStorage)
	ctx := context.Background()

	var source storage.AssetStorage
	if seedDemo {
		source = storage.NewDemoStorage()
	} else {
		dir := seedFrom
		if dir == "" {
			if dir, err = assetDir(cfg); err != nil {
				return err
			}
		}
		if source, err = storage.NewFileStorage(dir); err != nil {
			return err
		}
	}

	s3Store, err := newS3Store(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := s3Store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to S3 storage: %w", err)
	}
	log.Info("S3 storage connected successfully")

	if seedIfEmpty {
		isEmpty, err := s3Store.IsEmpty(ctx)
		if err != nil {
			return fmt.Errorf("failed to check if storage is empty: %w", err)
		}
		if !isEmpty {
			log.Info("Storage is not empty, skipping seed (--if-empty flag)")
			return nil
		}
	}

	n, err := seedAssets(ctx, source, s3Store, cfg.Assets.Suffix, log)
	if err != nil {
		return err
	}
	log.Success("Seeding complete", "documents", n)
	return nil
}

// seedAssets copies every key with suffix from src to dst in sorted order
func seedAssets(ctx context.Context, src, dst storage.AssetStorage, suffix string, log *logger.Logger) (int, error) {
	keys, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", src.Location(""), err)
	}
	sort.Strings(keys)

	log.Section("SEEDING DOCUMENTS")
	n := 0
	for _, key := range keys {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		data, err := src.Get(ctx, key)
		if err != nil {
			return n, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if err := dst.Put(ctx, key, bytes.NewReader(data)); err != nil {
			return n, fmt.Errorf("failed to upload %s: %w", key, err)
		}
		log.Document(key, "Seeded", "bytes", len(data), "location", dst.Location(key))
		n++
	}
	return n, nil
}
