package setting

import (
	"fmt"
)

// Setting is a leaf of the tree: a named, typed configuration value with a
// default, a validator supplied by its type, a tag set controlling which
// bulk operations apply to it, and the identifiers of the backing stores it
// persists to.
//
// A setting is mutated through SetValue and Reset and belongs to exactly one
// group at a time; ownership transfers on Group.Add and is severed on
// Group.Remove.
type Setting struct {
	Events

	name        string
	displayName string
	description string
	typ         *Type
	validate    Validator
	normalize   func(any) any
	allowEmpty  bool

	value        any
	defaultValue any

	tags    tagSet
	sources []string

	parent    *Group
	presenter Presenter
}

// NewSetting constructs a setting from a description using the built-in
// types. "type" and "name" are required; missing required attributes are
// reported by name.
func NewSetting(d Description) (*Setting, error) {
	return newSetting(d, DefaultTypes())
}

// NewSettingWith constructs a setting from a description resolving "type"
// against the given registry.
func NewSettingWith(d Description, types *TypeRegistry) (*Setting, error) {
	return newSetting(d, types)
}

func newSetting(d Description, types *TypeRegistry) (*Setting, error) {
	var missing []string

	typeName, err := d.str("type")
	if err != nil {
		return nil, err
	}
	if _, ok := d["type"]; !ok {
		missing = append(missing, "type")
	}

	name, err := d.str("name")
	if err != nil {
		return nil, err
	}
	if _, ok := d["name"]; !ok {
		missing = append(missing, "name")
	}

	var typ *Type
	if _, ok := d["type"]; ok {
		t, found := types.Lookup(typeName)
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
		}
		typ = t
		for _, attr := range typ.Required {
			if _, ok := d[attr]; !ok {
				missing = append(missing, attr)
			}
		}
	}

	if len(missing) > 0 {
		return nil, &MissingAttrsError{Attrs: missing}
	}

	if err := checkName(name); err != nil {
		return nil, err
	}

	var validate Validator
	if typ.Build != nil {
		validate, err = typ.Build(d)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", name, err)
		}
	}

	displayName, err := d.str("display_name")
	if err != nil {
		return nil, err
	}
	description, err := d.str("description")
	if err != nil {
		return nil, err
	}
	tags, err := d.strs("tags")
	if err != nil {
		return nil, err
	}
	sources, err := d.strs("sources")
	if err != nil {
		return nil, err
	}
	allowEmpty, err := d.boolean("allow_empty")
	if err != nil {
		return nil, err
	}

	defaultValue, ok := d["default"]
	if !ok && typ.Zero != nil {
		defaultValue = typ.Zero(d)
	}

	displayName = displayNameFor(displayName, name)

	s := &Setting{
		name:        name,
		displayName: displayName,
		description: descriptionFor(description, displayName),
		typ:         typ,
		validate:    validate,
		normalize:   typ.Normalize,
		allowEmpty:  allowEmpty,
		tags:        newTagSet(tags),
		sources:     sources,
		presenter:   &NullPresenter{},
	}
	s.Events.init(s)

	if !(s.allowEmpty && typ.emptyValue(defaultValue)) && defaultValue != nil {
		if validate != nil {
			if err := validate(defaultValue); err != nil {
				return nil, fmt.Errorf("setting %q: invalid default value: %s", name, err)
			}
		}
		if s.normalize != nil {
			defaultValue = s.normalize(defaultValue)
		}
	}
	s.defaultValue = defaultValue
	s.value = copyValue(defaultValue)
	s.presenter.SetValue(s.value)

	return s, nil
}

// Name implements Node.
func (s *Setting) Name() string { return s.name }

// DisplayName implements Node.
func (s *Setting) DisplayName() string { return s.displayName }

// Description implements Node.
func (s *Setting) Description() string { return s.description }

// HasTag implements Node.
func (s *Setting) HasTag(tag string) bool { return s.tags.has(tag) }

// Tags implements Node.
func (s *Setting) Tags() []string { return s.tags.all() }

// Parent implements Node.
func (s *Setting) Parent() *Group { return s.parent }

// Path implements Node.
func (s *Setting) Path() string { return nodePath(s) }

func (s *Setting) setParent(g *Group) { s.parent = g }

// String returns the setting's path for diagnostics.
func (s *Setting) String() string { return s.Path() }

// TypeName returns the name of the setting's value type.
func (s *Setting) TypeName() string { return s.typ.Name }

// Value returns the current value.
func (s *Setting) Value() any { return s.value }

// DefaultValue returns the value restored by Reset.
func (s *Setting) DefaultValue() any { return s.defaultValue }

// Sources returns the identifiers of the backing stores this setting
// persists to, in declaration order. An empty list means the setting is
// never persisted.
func (s *Setting) Sources() []string {
	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

// StoreKey returns the path backing stores key this setting's value by:
// the full path with the topmost ancestor omitted.
func (s *Setting) StoreKey() string { return storeKey(s) }

// SetValue validates and assigns a value, pushes it to the bound presenter
// and invokes the before-set-value, value-changed and after-set-value
// events (validation failures abort before any assignment or event beyond
// before-set-value).
func (s *Setting) SetValue(v any) error {
	s.Invoke(EventBeforeSetValue)

	if err := s.validateAndAssign(v); err != nil {
		return err
	}
	s.presenter.SetValue(s.value)

	s.Invoke(EventValueChanged)
	s.Invoke(EventAfterSetValue)
	return nil
}

// Reset restores the default value. Unlike SetValue the default is not
// validated. Invokes before-reset, value-changed and after-reset.
func (s *Setting) Reset() {
	s.Invoke(EventBeforeReset)

	s.value = copyValue(s.defaultValue)
	s.presenter.SetValue(s.value)

	s.Invoke(EventValueChanged)
	s.Invoke(EventAfterReset)
}

// BindPresenter attaches a presenter and pushes the current value into it.
// A nil presenter rebinds the null presenter.
func (s *Setting) BindPresenter(p Presenter) {
	if p == nil {
		p = &NullPresenter{}
	}
	s.presenter = p
	s.presenter.SetValue(s.value)
}

// Presenter returns the currently bound presenter.
func (s *Setting) Presenter() Presenter { return s.presenter }

// ApplyPresenterValue pulls the value entered in the bound presenter and
// assigns it after validation. On failure the setting keeps its value and a
// *ValueError referencing this setting is returned.
func (s *Setting) ApplyPresenterValue() error {
	if err := s.validateAndAssign(s.presenter.Value()); err != nil {
		return err
	}
	s.Invoke(EventValueChanged)
	return nil
}

func (s *Setting) validateAndAssign(v any) error {
	empty := s.typ.emptyValue(v)
	if !(s.allowEmpty && empty) && s.validate != nil {
		if err := s.validate(v); err != nil {
			return &ValueError{Setting: s, Value: v, Message: err.Error()}
		}
	}
	if s.normalize != nil && !empty {
		v = s.normalize(v)
	}
	s.value = copyValue(v)
	return nil
}

// copyValue shallow-copies slices and maps so the default value cannot be
// mutated through the live value.
func copyValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		copy(out, val)
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	default:
		return v
	}
}
