package source

import (
	"gopkg.in/yaml.v3"
)

// YAML is a source persisting settings to a YAML file.
type YAML struct {
	base
	fileStore
}

// NewYAML creates a YAML file source with the given identifier and file
// path.
func NewYAML(name, path string) *YAML {
	y := &YAML{
		fileStore: fileStore{
			name: name,
			path: path,
			decode: func(data []byte) (map[string]any, error) {
				var m map[string]any
				if err := yaml.Unmarshal(data, &m); err != nil {
					return nil, err
				}
				return m, nil
			},
			encode: func(m map[string]any) ([]byte, error) {
				return yaml.Marshal(m)
			},
		},
	}
	y.base = base{name: name, s: &y.fileStore}
	return y
}

// Path returns the backing file path.
func (y *YAML) Path() string { return y.fileStore.path }
