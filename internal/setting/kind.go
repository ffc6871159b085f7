package setting

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Validator checks whether a candidate value is valid for a setting. The
// core only calls this hook and propagates or aggregates its errors.
type Validator func(value any) error

// Type registers a setting value type: its default value, the description
// attributes it requires, how to build its validator, and how persisted
// values are normalized back into the canonical representation.
//
// The required-attribute list is an explicit, type-owned contract: missing
// attributes are reported by name before construction is attempted.
type Type struct {
	// Name identifies the type in descriptions ("type" attribute).
	Name string

	// Required lists description attributes the type needs beyond the
	// universally required "type" and "name".
	Required []string

	// Zero returns the default value used when a description omits
	// "default". May inspect the description (e.g. the first choice).
	Zero func(d Description) any

	// Build consumes type-specific attributes from the description and
	// returns the validator. A nil Build means no validation.
	Build func(d Description) (Validator, error)

	// Normalize converts an accepted value to the canonical representation
	// (e.g. any integer width to int64). Storage formats decode numbers
	// differently; normalizing keeps save/load round-trips exact.
	Normalize func(value any) any

	// Empty lists values the type treats as empty in addition to nil.
	// Settings with allow_empty accept these without validation.
	Empty []any
}

// emptyValue reports whether v counts as an empty value for the type.
// nil is empty for every type.
func (t *Type) emptyValue(v any) bool {
	if v == nil {
		return true
	}
	for _, e := range t.Empty {
		if v == e {
			return true
		}
	}
	return false
}

// TypeRegistry maintains the known setting types. Declarative construction
// resolves the "type" attribute against a registry.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]*Type)}
}

// Register adds a type. Registering a name twice is an error.
func (r *TypeRegistry) Register(t Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("setting type %q already registered", t.Name)
	}
	r.types[t.Name] = &t
	return nil
}

// MustRegister registers a type and panics on error. Useful for registering
// built-in types at startup.
func (r *TypeRegistry) MustRegister(t Type) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the type with the given name.
func (r *TypeRegistry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

var defaultTypesOnce = sync.OnceValue(func() *TypeRegistry {
	r := NewTypeRegistry()
	RegisterBuiltinTypes(r)
	return r
})

// DefaultTypes returns the shared registry holding the built-in types.
func DefaultTypes() *TypeRegistry {
	return defaultTypesOnce()
}

var fileExtensionPattern = regexp.MustCompile(`^[A-Za-z0-9]+(\.[A-Za-z0-9]+)*$`)

// RegisterBuiltinTypes registers the built-in setting types on a registry.
func RegisterBuiltinTypes(r *TypeRegistry) {
	r.MustRegister(Type{
		Name: "int",
		Zero: func(Description) any { return int64(0) },
		Build: func(d Description) (Validator, error) {
			return numericValidator(d, func(v any) (float64, error) {
				n, ok := toInt(v)
				if !ok {
					return 0, fmt.Errorf("expected integer, got %T", v)
				}
				return float64(n), nil
			})
		},
		Normalize: func(v any) any {
			n, _ := toInt(v)
			return n
		},
	})

	r.MustRegister(Type{
		Name: "float",
		Zero: func(Description) any { return float64(0) },
		Build: func(d Description) (Validator, error) {
			return numericValidator(d, func(v any) (float64, error) {
				f, ok := toFloat(v)
				if !ok {
					return 0, fmt.Errorf("expected number, got %T", v)
				}
				return f, nil
			})
		},
		Normalize: func(v any) any {
			f, _ := toFloat(v)
			return f
		},
	})

	r.MustRegister(Type{
		Name: "bool",
		Zero: func(Description) any { return false },
		Build: func(Description) (Validator, error) {
			return func(v any) error {
				if _, ok := v.(bool); !ok {
					return fmt.Errorf("expected boolean, got %T", v)
				}
				return nil
			}, nil
		},
	})

	r.MustRegister(Type{
		Name:  "string",
		Zero:  func(Description) any { return "" },
		Empty: []any{""},
		Build: func(Description) (Validator, error) {
			return func(v any) error {
				if _, ok := v.(string); !ok {
					return fmt.Errorf("expected string, got %T", v)
				}
				return nil
			}, nil
		},
	})

	r.MustRegister(Type{
		Name:     "choice",
		Required: []string{"choices"},
		Zero: func(d Description) any {
			choices, err := d.strs("choices")
			if err != nil || len(choices) == 0 {
				return nil
			}
			return choices[0]
		},
		Build: func(d Description) (Validator, error) {
			choices, err := d.strs("choices")
			if err != nil {
				return nil, err
			}
			if len(choices) == 0 {
				return nil, fmt.Errorf("attribute %q: must not be empty", "choices")
			}
			return func(v any) error {
				s, ok := v.(string)
				if !ok {
					return fmt.Errorf("expected string, got %T", v)
				}
				for _, choice := range choices {
					if s == choice {
						return nil
					}
				}
				return fmt.Errorf("value %q must be one of: %s", s, strings.Join(choices, ", "))
			}, nil
		},
	})

	r.MustRegister(Type{
		Name:  "file_extension",
		Zero:  func(Description) any { return "" },
		Empty: []any{""},
		Build: func(Description) (Validator, error) {
			return func(v any) error {
				s, ok := v.(string)
				if !ok {
					return fmt.Errorf("expected string, got %T", v)
				}
				if !fileExtensionPattern.MatchString(s) {
					return fmt.Errorf("%q is not a valid file extension", s)
				}
				return nil
			}, nil
		},
	})

	r.MustRegister(Type{
		Name:  "dirpath",
		Zero:  func(Description) any { return "" },
		Empty: []any{""},
		Build: func(Description) (Validator, error) {
			return func(v any) error {
				s, ok := v.(string)
				if !ok {
					return fmt.Errorf("expected string, got %T", v)
				}
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("directory path must not be empty")
				}
				if strings.ContainsRune(s, 0) {
					return fmt.Errorf("directory path must not contain NUL")
				}
				return nil
			}, nil
		},
	})

	// generic accepts any value and never validates. Useful for opaque
	// session state such as selection sets.
	r.MustRegister(Type{
		Name: "generic",
		Zero: func(Description) any { return nil },
	})
}

// numericValidator builds a validator that type-checks via convert and
// enforces the optional "min"/"max" description attributes.
func numericValidator(d Description, convert func(any) (float64, error)) (Validator, error) {
	min, hasMin, err := d.float("min")
	if err != nil {
		return nil, err
	}
	max, hasMax, err := d.float("max")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		f, err := convert(v)
		if err != nil {
			return err
		}
		if hasMin && f < min {
			return fmt.Errorf("value %v is less than minimum %v", v, min)
		}
		if hasMax && f > max {
			return fmt.Errorf("value %v is greater than maximum %v", v, max)
		}
		return nil
	}, nil
}
