package order

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileLoader reads order documents named order.<id>.json from a directory.
type FileLoader struct {
	fs  afero.Fs
	dir string
}

// NewFileLoader creates a loader over dir. A nil fs uses the OS filesystem.
func NewFileLoader(fs afero.Fs, dir string) *FileLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileLoader{fs: fs, dir: dir}
}

// LoadOrderData returns the decoded document, or an empty map when no
// document exists for id.
func (l *FileLoader) LoadOrderData(ctx context.Context, id int) (map[string]any, error) {
	path := filepath.Join(l.dir, fmt.Sprintf("order.%d.json", id))

	raw, err := afero.ReadFile(l.fs, path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order document %s: %w", path, err)
	}

	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode order document %s: %w", path, err)
	}
	return data, nil
}

var _ Loader = (*FileLoader)(nil)
