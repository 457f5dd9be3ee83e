package storage

import "context"

// ObjectStore captures the minimal S3-compatible read operations the
// ingest pipeline needs.
type ObjectStore interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}
