package blob

import (
	"context"
	"fmt"

	"colonywork/internal/config"
	infraS3 "colonywork/internal/infra/blob/s3"
)

// Open selects a Store implementation for the archive settings. S3
// credentials come from the standard AWS environment variables.
func Open(ctx context.Context, cfg config.Archive) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, infraS3.ConfigFromEnv(S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		}))
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
