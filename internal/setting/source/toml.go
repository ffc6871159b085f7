package source

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TOML is a source persisting settings to a TOML file, one key per setting
// store key.
type TOML struct {
	base
	fileStore
}

// NewTOML creates a TOML file source with the given identifier and file
// path.
func NewTOML(name, path string) *TOML {
	t := &TOML{
		fileStore: fileStore{
			name: name,
			path: path,
			decode: func(data []byte) (map[string]any, error) {
				var m map[string]any
				if err := toml.Unmarshal(data, &m); err != nil {
					return nil, err
				}
				return m, nil
			},
			encode: func(m map[string]any) ([]byte, error) {
				return toml.Marshal(m)
			},
		},
	}
	t.base = base{name: name, s: &t.fileStore}
	return t
}

// Path returns the backing file path.
func (t *TOML) Path() string { return t.fileStore.path }

// fileStore implements store over a flat file with pluggable encoding.
type fileStore struct {
	name   string
	path   string
	decode func([]byte) (map[string]any, error)
	encode func(map[string]any) ([]byte, error)
}

func (f *fileStore) readAll() (map[string]any, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &ReadError{Source: f.name, Err: err}
	}
	m, err := f.decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, f.path, err)
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m, true, nil
}

func (f *fileStore) writeAll(data map[string]any) error {
	encoded, err := f.encode(data)
	if err != nil {
		return &WriteError{Source: f.name, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return &WriteError{Source: f.name, Err: err}
	}
	if err := os.WriteFile(f.path, encoded, 0o644); err != nil {
		return &WriteError{Source: f.name, Err: err}
	}
	return nil
}

func (f *fileStore) clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return &WriteError{Source: f.name, Err: err}
	}
	return nil
}
