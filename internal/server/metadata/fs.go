package metadata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"

	"github.com/bierclub/bier/internal/common"
)

const (
	dirPerm  fs.FileMode = 0o700
	filePerm fs.FileMode = 0o600
)

// FSStore writes <root>/<userID>/metadata.bin. Writes go through a
// temporary file and a rename so readers never see a partial blob.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create metadata root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) userDir(userID int64) string {
	return filepath.Join(s.root, strconv.FormatInt(userID, 10))
}

func (s *FSStore) path(userID int64) string {
	return filepath.Join(s.userDir(userID), FileName)
}

func (s *FSStore) Create(ctx context.Context, userID int64, blobHex string) error {
	if err := os.MkdirAll(s.userDir(userID), dirPerm); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}
	return s.Save(ctx, userID, blobHex)
}

func (s *FSStore) Load(_ context.Context, userID int64) (string, error) {
	b, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("read metadata: %w", err)
	}
	return string(b), nil
}

func (s *FSStore) Save(_ context.Context, userID int64, blobHex string) error {
	if err := renameio.WriteFile(s.path(userID), []byte(blobHex), filePerm); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *FSStore) Delete(_ context.Context, userID int64) error {
	if err := os.RemoveAll(s.userDir(userID)); err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	return nil
}
