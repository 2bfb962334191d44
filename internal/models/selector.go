package models

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DirSelector resolves the selected transcription model from a directory
// of whisper.cpp ggml model files. The scan happens once, lazily; until it
// completes the selector reports loading and no model.
type DirSelector struct {
	dir      string
	selected string // model name without the ggml- prefix / .bin suffix

	once      sync.Once
	mu        sync.Mutex
	loading   bool
	available map[string]string // name -> absolute path
}

func NewDirSelector(dir, selected string) *DirSelector {
	return &DirSelector{dir: dir, selected: selected, loading: true}
}

func (s *DirSelector) scan() {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	found := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "ggml-") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, "ggml-"), ".bin")
		found[key] = filepath.Join(s.dir, name)
	}
	s.mu.Lock()
	s.available = found
	s.mu.Unlock()
}

// SelectedModelPath returns the location of the configured model, if it
// exists on disk.
func (s *DirSelector) SelectedModelPath() (string, bool) {
	s.once.Do(s.scan)
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.available[s.selected]
	return path, ok
}

func (s *DirSelector) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Available lists the model names found on disk.
func (s *DirSelector) Available() []string {
	s.once.Do(s.scan)
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.available))
	for name := range s.available {
		names = append(names, name)
	}
	return names
}
