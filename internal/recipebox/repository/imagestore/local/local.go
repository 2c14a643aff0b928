package local

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/google/uuid"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// LocalImageStore keeps uploaded recipe images on the local filesystem.
type LocalImageStore struct {
	dir string
}

func New(cfg config.Images) (LocalImageStore, error) {
	if err := os.MkdirAll(cfg.Dir, dirPerm); err != nil {
		return LocalImageStore{}, fmt.Errorf("mkdir error: %w", err)
	}

	return LocalImageStore{dir: cfg.Dir}, nil
}

// Save writes the image under a fresh random name and returns its path.
func (ls LocalImageStore) Save(recipeID int64, ext string, data []byte) (string, error) {
	name := fmt.Sprintf("recipe-%d-%s%s", recipeID, uuid.NewString(), ext)
	path := filepath.Join(ls.dir, name)

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("write file error: %w", err)
	}

	return path, nil
}

func (ls LocalImageStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file error: %w", err)
	}

	return nil
}
