// Package source provides the backing stores settings persist to.
//
// Every source satisfies the same contract: read assigns stored values to
// the given settings and reports the ones it could not find, write merges
// the given settings into the store keeping unrelated entries intact. The
// setting list passed to one call is treated as one atomic unit.
package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/layerport/layerport/internal/setting"
)

// Source reads and writes setting values for one storage identifier.
type Source interface {
	// Name is the storage identifier settings reference in their source
	// lists.
	Name() string

	// Read assigns stored values to the given settings. Values that fail
	// the setting's validation reset the setting to its default. Returns
	// ErrSourceNotFound if the store does not exist yet, or a
	// *SettingsNotFoundError listing settings absent from the store.
	Read(settings []*setting.Setting) error

	// Write merges the given settings' values into the store. Entries for
	// settings not in the list are kept intact.
	Write(settings []*setting.Setting) error

	// Clear removes all entries from the store.
	Clear() error

	// HasData reports whether the store exists and holds any entries.
	HasData() bool
}

// Errors reported by sources.
var (
	// ErrSourceNotFound indicates the store does not exist yet.
	ErrSourceNotFound = errors.New("setting source not found")

	// ErrInvalidFormat indicates the store exists but could not be
	// decoded, e.g. after manual editing.
	ErrInvalidFormat = errors.New("setting source has invalid format")
)

// SettingsNotFoundError lists settings a read could not find in the store.
type SettingsNotFoundError struct {
	// Settings are the missing settings, in the order they were passed.
	Settings []*setting.Setting
}

// Error implements the error interface.
func (e *SettingsNotFoundError) Error() string {
	paths := make([]string, len(e.Settings))
	for i, s := range e.Settings {
		paths[i] = s.Path()
	}
	return "the following settings could not be found:\n" + strings.Join(paths, "\n")
}

// ReadError reports a failed read of the underlying store.
type ReadError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("reading setting source %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed write of the underlying store.
type WriteError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("writing setting source %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error { return e.Err }

// store is the minimal persistence surface a concrete source implements;
// base layers the read/merge/write setting semantics on top of it.
type store interface {
	// readAll returns every stored entry. ok is false when the store does
	// not exist yet.
	readAll() (data map[string]any, ok bool, err error)

	// writeAll replaces the store contents.
	writeAll(data map[string]any) error

	// clear removes the store.
	clear() error
}

type base struct {
	name string
	s    store
}

// Name implements Source.
func (b *base) Name() string { return b.name }

// Read implements Source.
func (b *base) Read(settings []*setting.Setting) error {
	data, ok, err := b.s.readAll()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, b.name)
	}

	var missing []*setting.Setting
	for _, s := range settings {
		value, found := data[s.StoreKey()]
		if !found {
			missing = append(missing, s)
			continue
		}
		if err := s.SetValue(value); err != nil {
			// Stored value no longer valid for the setting; fall back to
			// the default.
			s.Reset()
		}
	}

	if len(missing) > 0 {
		return &SettingsNotFoundError{Settings: missing}
	}
	return nil
}

// Write implements Source.
func (b *base) Write(settings []*setting.Setting) error {
	data, ok, err := b.s.readAll()
	if err != nil {
		return err
	}
	if !ok {
		data = make(map[string]any)
	}
	for _, s := range settings {
		data[s.StoreKey()] = s.Value()
	}
	return b.s.writeAll(data)
}

// Clear implements Source.
func (b *base) Clear() error { return b.s.clear() }

// HasData implements Source.
func (b *base) HasData() bool {
	data, ok, err := b.s.readAll()
	return err == nil && ok && len(data) > 0
}
