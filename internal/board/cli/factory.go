package cli

import (
	"context"
	"fmt"

	"postboard/internal/blobstore"
	"postboard/internal/board/config"
	"postboard/internal/docstore"
	"postboard/internal/logging"
)

// newDocStore builds the document store named by the configuration. The
// memory backend exists for demos and local development; it keeps posts
// only for the process lifetime.
func newDocStore(ctx context.Context, c *config.Config, log logging.Logger) (docstore.Store, error) {
	switch c.StoreBackend {
	case "memory":
		return docstore.NewMemoryStore(), nil
	case "postgres":
		return docstore.NewPostgresStore(ctx, c.DatabaseDSN, log)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
}

// newBlobStore builds the object storage client. The memory document
// backend pairs with in-memory object storage so a demo needs no external
// services.
func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	if c.StoreBackend == "memory" {
		return blobstore.NewMemoryStore(c.S3Bucket), nil
	}
	return blobstore.NewS3Store(ctx, blobstore.S3Config{
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
	})
}
