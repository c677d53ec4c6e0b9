// Package history keeps completed benchmark runs so later runs can be compared.
package history

import (
	"fmt"
	"path/filepath"
	"strings"

	"lineaops/internal/benchmark"
)

// Store persists runs. Latest returns the n most recent runs, newest first.
type Store interface {
	Save(run benchmark.Run) error
	Latest(n int) ([]benchmark.Run, error)
	All() ([]benchmark.Run, error)
	Close() error
}

// Open picks the backend from the file extension: .json keeps a plain JSON file,
// anything else is a SQLite database.
func Open(path string) (Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewFileStore(path)
	default:
		return NewSQLiteStore(path)
	}
}
