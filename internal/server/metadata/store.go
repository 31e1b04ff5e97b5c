// Package metadata keeps each user's encrypted metadata blob outside the
// database, either on the local filesystem or in an S3-compatible bucket.
//
// Blobs are opaque hex strings here; encryption happens in the services.
package metadata

import (
	"context"
	"fmt"
)

// FileName is the blob name inside a user's directory or key prefix.
const FileName = "metadata.bin"

// Store is the per-user blob storage. Load returns common.ErrNotFound for
// a user without a blob. Delete of a missing blob is not an error.
type Store interface {
	Create(ctx context.Context, userID int64, blobHex string) error
	Load(ctx context.Context, userID int64) (string, error)
	Save(ctx context.Context, userID int64, blobHex string) error
	Delete(ctx context.Context, userID int64) error
}

// ObjectKey is the S3 key of userID's blob.
func ObjectKey(userID int64) string {
	return fmt.Sprintf("users/%d/%s", userID, FileName)
}
