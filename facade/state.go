// File: facade/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FileStateStore is a key/value store backed by one JSON file. Each value is
// an embedded JSON document.

package facade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/momentics/spaceradio/api"
)

var pathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)

// FileStateStore persists state documents under string keys.
type FileStateStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStateStore uses path; the file is created on first Save.
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

// Path returns the backing file.
func (s *FileStateStore) Path() string { return s.path }

// Load returns the document stored under key. Missing files and keys
// return an error matching api.ErrNotFound.
func (s *FileStateStore) Load(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	v := gjson.GetBytes(doc, pathEscaper.Replace(key))
	if !v.Exists() {
		return nil, api.NewError(api.ErrCodeNotFound, "state key not found").
			WithContext("key", key).WithContext("path", s.path)
	}
	return []byte(v.Raw), nil
}

// Save stores data, which must be valid JSON, under key and rewrites the
// file atomically.
func (s *FileStateStore) Save(key string, data []byte) error {
	if !gjson.ValidBytes(data) {
		return api.NewError(api.ErrCodeInvalidArgument, "state document is not valid JSON").
			WithContext("key", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if errors.Is(err, api.ErrNotFound) {
		doc, err = []byte(`{}`), nil
	}
	if err != nil {
		return err
	}
	doc, err = sjson.SetRawBytes(doc, pathEscaper.Replace(key), data)
	if err != nil {
		return fmt.Errorf("set state key %q: %w", key, err)
	}
	return s.write(doc)
}

// Keys lists stored keys.
func (s *FileStateStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if errors.Is(err, api.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	gjson.ParseBytes(doc).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys, nil
}

func (s *FileStateStore) read() ([]byte, error) {
	doc, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, api.NewError(api.ErrCodeNotFound, "state file not found").
			WithContext("path", s.path).Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", s.path, err)
	}
	if !gjson.ValidBytes(doc) {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "state file is not valid JSON").
			WithContext("path", s.path)
	}
	return doc, nil
}

func (s *FileStateStore) write(doc []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".spaceradio-*.json")
	if err != nil {
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state %s: %w", s.path, err)
	}
	return os.Rename(tmp.Name(), s.path)
}
