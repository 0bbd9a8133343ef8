package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileStore keeps Settings in a YAML file.
type FileStore struct {
	path     string
	validate *validator.Validate
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:     path,
		validate: validator.New(),
	}
}

func (store *FileStore) Path() string {
	return store.path
}

// Load reads the settings file. A missing file is not an error: Default() is returned.
func (store *FileStore) Load(ctx context.Context) (Settings, error) {
	settings := Default()

	contents, err := os.ReadFile(store.path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("os.ReadFile > %w", err)
	}

	if err := yaml.Unmarshal(contents, &settings); err != nil {
		return Default(), fmt.Errorf("yaml.Unmarshal(%s) > %w", store.path, err)
	}
	if err := store.validate.StructCtx(ctx, settings); err != nil {
		return Default(), fmt.Errorf("invalid settings in %s > %w", store.path, err)
	}
	return settings, nil
}

func (store *FileStore) Save(ctx context.Context, settings Settings) error {
	if err := store.validate.StructCtx(ctx, settings); err != nil {
		return fmt.Errorf("invalid settings > %w", err)
	}

	contents, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("yaml.Marshal > %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.path), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}
	tmpPath := store.path + ".tmp"
	if err := os.WriteFile(tmpPath, contents, 0644); err != nil {
		return fmt.Errorf("os.WriteFile > %w", err)
	}
	if err := os.Rename(tmpPath, store.path); err != nil {
		return fmt.Errorf("os.Rename > %w", err)
	}
	return nil
}
