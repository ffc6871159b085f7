// Package persist coordinates loading and saving settings across their
// configured sources.
//
// Each setting carries an ordered list of source names. The coordinator
// resolves names through a Registry, partitions settings so that each
// distinct source list forms one atomic unit, and aggregates per-unit
// outcomes into a single Result whose Status is the worst one encountered.
package persist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/layerport/layerport/internal/setting"
	"github.com/layerport/layerport/internal/setting/source"
)

// Status is the outcome of a load or save, ordered by severity.
type Status int

// Statuses, least to most severe.
const (
	// Success means every setting was read or written.
	Success Status = iota

	// NotAllSettingsFound means some settings were absent from every
	// source they were tried against; those settings keep their current
	// values.
	NotAllSettingsFound

	// WriteFail means a source could not be written.
	WriteFail

	// ReadFail means a source exists but could not be read, e.g. because
	// its contents are malformed.
	ReadFail
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NotAllSettingsFound:
		return "not all settings found"
	case WriteFail:
		return "write failed"
	case ReadFail:
		return "read failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result reports the outcome of a load or save.
type Result struct {
	// Status is the worst status encountered across all atomic units.
	Status Status

	// Message belongs to the atomic unit that produced the status, empty
	// on Success.
	Message string
}

// merge keeps the more severe result. On a status tie the earlier result
// wins, so aggregation over units in walk order keeps the first message
// for the worst status.
func (r Result) merge(other Result) Result {
	if other.Status > r.Status {
		return other
	}
	return r
}

// Registry maps source names to sources. Settings reference sources by
// name so trees can be declared before any backend exists.
type Registry struct {
	sources map[string]source.Source
}

// NewRegistry creates a registry holding the given sources.
func NewRegistry(sources ...source.Source) *Registry {
	r := &Registry{sources: make(map[string]source.Source, len(sources))}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds a source under its name, replacing any previous one.
func (r *Registry) Register(s source.Source) {
	r.sources[s.Name()] = s
}

// Lookup returns the source registered under name.
func (r *Registry) Lookup(name string) (source.Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// Load reads the given settings as one atomic unit from the given sources,
// trying each source in order for the settings the previous ones did not
// have. Settings found in no source keep their current values.
func Load(settings []*setting.Setting, sources []source.Source) Result {
	if len(settings) == 0 || len(sources) == 0 {
		return Result{Status: Success}
	}

	for _, s := range settings {
		s.Invoke(setting.EventBeforeLoad)
	}

	result := Result{Status: Success}
	remaining := settings
	for i, src := range sources {
		err := src.Read(remaining)
		if err == nil {
			remaining = nil
			break
		}

		var nf *source.SettingsNotFoundError
		switch {
		case errors.As(err, &nf):
			remaining = nf.Settings
		case errors.Is(err, source.ErrSourceNotFound):
			// Keep remaining as is and try the next source.
		default:
			return Result{Status: ReadFail, Message: err.Error()}
		}

		if i == len(sources)-1 {
			result = Result{
				Status:  NotAllSettingsFound,
				Message: err.Error(),
			}
		}
	}

	for _, s := range settings {
		s.Invoke(setting.EventAfterLoad)
	}
	return result
}

// Save writes the given settings as one atomic unit to every given source.
func Save(settings []*setting.Setting, sources []source.Source) Result {
	if len(settings) == 0 || len(sources) == 0 {
		return Result{Status: Success}
	}

	for _, s := range settings {
		s.Invoke(setting.EventBeforeSave)
	}

	for _, src := range sources {
		if err := src.Write(settings); err != nil {
			return Result{Status: WriteFail, Message: err.Error()}
		}
	}

	for _, s := range settings {
		s.Invoke(setting.EventAfterSave)
	}
	return Result{Status: Success}
}

// LoadGroup loads every setting in the group's subtree from its configured
// sources, skipping nodes tagged ignore_load. If only is non-empty, each
// setting's source list is narrowed to the named sources, keeping the
// setting's own order; settings left with no sources are skipped.
func LoadGroup(g *setting.Group, reg *Registry, only ...string) Result {
	buckets, walked := partition(g, setting.TagIgnoreLoad, only)

	for _, s := range walked {
		s.Invoke(setting.EventBeforeLoadGroup)
	}

	result := Result{Status: Success}
	for _, b := range buckets {
		sources, err := resolve(reg, b.sourceNames)
		if err != nil {
			result = result.merge(Result{Status: ReadFail, Message: err.Error()})
			continue
		}
		result = result.merge(Load(b.settings, sources))
	}

	for _, s := range walked {
		s.Invoke(setting.EventAfterLoadGroup)
	}
	return result
}

// SaveGroup saves every setting in the group's subtree to its configured
// sources, skipping nodes tagged ignore_save. If only is non-empty, each
// setting's source list is narrowed the same way as in LoadGroup.
func SaveGroup(g *setting.Group, reg *Registry, only ...string) Result {
	buckets, walked := partition(g, setting.TagIgnoreSave, only)

	for _, s := range walked {
		s.Invoke(setting.EventBeforeSaveGroup)
	}

	result := Result{Status: Success}
	for _, b := range buckets {
		sources, err := resolve(reg, b.sourceNames)
		if err != nil {
			result = result.merge(Result{Status: WriteFail, Message: err.Error()})
			continue
		}
		result = result.merge(Save(b.settings, sources))
	}

	for _, s := range walked {
		s.Invoke(setting.EventAfterSaveGroup)
	}
	return result
}

// LoadSetting reads one setting from its configured sources, narrowed to
// only when non-empty. A setting left with no sources loads nothing.
func LoadSetting(s *setting.Setting, reg *Registry, only ...string) Result {
	sources, err := resolveFor(s, reg, only)
	if err != nil {
		return Result{Status: ReadFail, Message: err.Error()}
	}
	return Load([]*setting.Setting{s}, sources)
}

// SaveSetting writes one setting to its configured sources, narrowed to
// only when non-empty.
func SaveSetting(s *setting.Setting, reg *Registry, only ...string) Result {
	sources, err := resolveFor(s, reg, only)
	if err != nil {
		return Result{Status: WriteFail, Message: err.Error()}
	}
	return Save([]*setting.Setting{s}, sources)
}

func resolveFor(s *setting.Setting, reg *Registry, only []string) ([]source.Source, error) {
	names := s.Sources()
	if len(only) > 0 {
		names = intersect(names, only)
	}
	return resolve(reg, names)
}

// bucket is one atomic unit: settings sharing the exact same source list.
type bucket struct {
	sourceNames []string
	settings    []*setting.Setting
}

// partition walks the subtree skipping the given tag and groups the
// settings by their effective source list. Bucket order follows first
// appearance in walk order. walked holds every visited setting, including
// those without sources.
func partition(g *setting.Group, skipTag string, only []string) (buckets []*bucket, walked []*setting.Setting) {
	index := make(map[string]*bucket)

	w := g.Walk(setting.WalkOptions{Include: setting.ExcludeTag(skipTag)})
	for _, s := range w.Settings() {
		walked = append(walked, s)

		names := s.Sources()
		if len(only) > 0 {
			names = intersect(names, only)
		}
		if len(names) == 0 {
			continue
		}

		key := strings.Join(names, "\x1f")
		b, ok := index[key]
		if !ok {
			b = &bucket{sourceNames: names}
			index[key] = b
			buckets = append(buckets, b)
		}
		b.settings = append(b.settings, s)
	}
	return buckets, walked
}

// intersect keeps the names also present in allowed, preserving the order
// of names.
func intersect(names, allowed []string) []string {
	var out []string
	for _, n := range names {
		for _, a := range allowed {
			if n == a {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

func resolve(reg *Registry, names []string) ([]source.Source, error) {
	sources := make([]source.Source, len(names))
	for i, name := range names {
		s, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown setting source %q", name)
		}
		sources[i] = s
	}
	return sources, nil
}
