package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSON is a source persisting settings to a flat JSON object, one key per
// setting store key.
type JSON struct {
	base
	jsonStore
}

// NewJSON creates a JSON file source with the given identifier and file
// path.
func NewJSON(name, path string) *JSON {
	j := &JSON{jsonStore: jsonStore{name: name, path: path}}
	j.base = base{name: name, s: &j.jsonStore}
	return j
}

// Path returns the backing file path.
func (j *JSON) Path() string { return j.jsonStore.path }

type jsonStore struct {
	name string
	path string
}

func (j *jsonStore) readAll() (map[string]any, bool, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &ReadError{Source: j.name, Err: err}
	}
	if !gjson.ValidBytes(data) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidFormat, j.path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, false, fmt.Errorf("%w: %q: top-level value is not an object", ErrInvalidFormat, j.path)
	}
	out := make(map[string]any)
	root.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value.Value()
		return true
	})
	return out, true, nil
}

func (j *jsonStore) writeAll(data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := []byte("{}")
	var err error
	for _, k := range keys {
		doc, err = sjson.SetBytes(doc, escapeKey(k), data[k])
		if err != nil {
			return &WriteError{Source: j.name, Err: err}
		}
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return &WriteError{Source: j.name, Err: err}
	}
	if err := os.WriteFile(j.path, doc, 0o644); err != nil {
		return &WriteError{Source: j.name, Err: err}
	}
	return nil
}

func (j *jsonStore) clear() error {
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return &WriteError{Source: j.name, Err: err}
	}
	return nil
}

// escapeKey escapes path metacharacters so a store key is treated as one
// literal object key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '|', '#', '@', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
