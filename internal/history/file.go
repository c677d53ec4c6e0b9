package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"lineaops/internal/benchmark"
)

// FileStore keeps every run in a single JSON array.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Save(run benchmark.Run) error {
	runs, err := s.All()
	if err != nil {
		return err
	}
	for i := range runs {
		if runs[i].ID == run.ID {
			runs = append(runs[:i], runs[i+1:]...)
			break
		}
	}
	runs = append(runs, run)

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal runs: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// All returns every run, oldest first.
func (s *FileStore) All() ([]benchmark.Run, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []benchmark.Run{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []benchmark.Run{}, nil
	}

	var runs []benchmark.Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal runs: %w", err)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs, nil
}

func (s *FileStore) Latest(n int) ([]benchmark.Run, error) {
	runs, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []benchmark.Run
	for i := len(runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, runs[i])
	}
	return out, nil
}
