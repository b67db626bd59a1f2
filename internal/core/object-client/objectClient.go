package objectclient

import (
	"context"
	"fmt"

	cfg "github.com/markdave123-py/Scholara/internal/config"
	"github.com/markdave123-py/Scholara/internal/core"
)

// New returns the object store selected by ARTIFACT_STORE, or nil when
// publishing is disabled. It's abstract so you can swap AWS for MinIO easily.
func New(ctx context.Context, c *cfg.Config) (core.ObjectClient, error) {
	switch c.ArtifactStore {
	case "":
		return nil, nil
	case "s3":
		s3c, err := NewS3Client(ctx, c)
		if err != nil {
			return nil, err
		}
		return s3c, nil
	case "minio":
		mc, err := NewMinioClient(ctx, c.MinioEndpoint, c.MinioAccessKey, c.MinioSecretKey, c.MinioBucket, c.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		return nil, fmt.Errorf("unknown artifact store %q", c.ArtifactStore)
	}
}
