package setting

import (
	"fmt"
	"strings"
)

// Group is an internal node of the tree: a named, ordered container of
// settings and nested groups. Insertion order is preserved and significant
// for traversal and for ordered value export.
type Group struct {
	Events

	name        string
	displayName string
	description string
	tags        tagSet

	// settingAttrs holds default description attributes merged into every
	// child constructed from a description, overridable per child.
	settingAttrs Description

	types  *TypeRegistry
	parent *Group

	children []Node
	index    map[string]Node
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithDisplayName sets the human-readable group name.
func WithDisplayName(displayName string) GroupOption {
	return func(g *Group) { g.displayName = displayName }
}

// WithGroupDescription sets the group description.
func WithGroupDescription(description string) GroupOption {
	return func(g *Group) { g.description = description }
}

// WithTags attaches tags to the group.
func WithTags(tags ...string) GroupOption {
	return func(g *Group) { g.tags = newTagSet(tags) }
}

// WithSettingAttributes sets default description attributes applied to every
// child created from a description, unless the child overrides them.
func WithSettingAttributes(attrs Description) GroupOption {
	return func(g *Group) { g.settingAttrs = attrs }
}

// WithTypes sets the type registry used to resolve "type" attributes of
// descendants created from descriptions. Defaults to the built-in types.
func WithTypes(types *TypeRegistry) GroupOption {
	return func(g *Group) { g.types = types }
}

// NewGroup creates an empty group.
func NewGroup(name string, opts ...GroupOption) (*Group, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	g := &Group{
		name:  name,
		index: make(map[string]Node),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.displayName = displayNameFor(g.displayName, g.name)
	g.description = descriptionFor(g.description, g.displayName)
	if g.types == nil {
		g.types = DefaultTypes()
	}
	if g.tags.set == nil {
		g.tags = newTagSet(nil)
	}
	g.Events.init(g)

	return g, nil
}

// MustNewGroup creates a group and panics on error. Useful for building
// static trees at startup.
func MustNewGroup(name string, opts ...GroupOption) *Group {
	g, err := NewGroup(name, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// GroupFromDescription recursively builds a group hierarchy. "name" is
// required; "display_name", "description", "tags" and "setting_attributes"
// are optional; "settings" lists child setting descriptions and "groups"
// lists child group descriptions, built before being added.
func GroupFromDescription(d Description) (*Group, error) {
	return groupFromDescription(d, DefaultTypes())
}

// GroupFromDescriptionWith is GroupFromDescription with an explicit type
// registry inherited by the whole hierarchy.
func GroupFromDescriptionWith(d Description, types *TypeRegistry) (*Group, error) {
	return groupFromDescription(d, types)
}

func groupFromDescription(d Description, types *TypeRegistry) (*Group, error) {
	name, err := d.str("name")
	if err != nil {
		return nil, err
	}
	if _, ok := d["name"]; !ok {
		return nil, &MissingAttrsError{Attrs: []string{"name"}}
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

	var attrs Description
	if v, ok := d["setting_attributes"]; ok {
		switch a := v.(type) {
		case Description:
			attrs = a
		case map[string]any:
			attrs = Description(a)
		default:
			return nil, fmt.Errorf("attribute %q: expected map, got %T", "setting_attributes", v)
		}
	}

	g, err := NewGroup(name,
		WithDisplayName(displayName),
		WithGroupDescription(description),
		WithTags(tags...),
		WithSettingAttributes(attrs),
		WithTypes(types),
	)
	if err != nil {
		return nil, err
	}

	settings, err := childDescriptions(d, "settings")
	if err != nil {
		return nil, err
	}
	for _, child := range settings {
		if err := g.Add(child); err != nil {
			return nil, err
		}
	}

	groups, err := childDescriptions(d, "groups")
	if err != nil {
		return nil, err
	}
	for _, child := range groups {
		sub, err := groupFromDescription(child, types)
		if err != nil {
			return nil, err
		}
		if err := g.Add(sub); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func childDescriptions(d Description, key string) ([]Description, error) {
	v, ok := d[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("attribute %q: expected list, got %T", key, v)
	}
	out := make([]Description, 0, len(list))
	for _, item := range list {
		switch cd := item.(type) {
		case Description:
			out = append(out, cd)
		case map[string]any:
			out = append(out, Description(cd))
		default:
			return nil, fmt.Errorf("attribute %q: expected map element, got %T", key, item)
		}
	}
	return out, nil
}

// Name implements Node.
func (g *Group) Name() string { return g.name }

// DisplayName implements Node.
func (g *Group) DisplayName() string { return g.displayName }

// Description implements Node.
func (g *Group) Description() string { return g.description }

// HasTag implements Node.
func (g *Group) HasTag(tag string) bool { return g.tags.has(tag) }

// Tags implements Node.
func (g *Group) Tags() []string { return g.tags.all() }

// Parent implements Node.
func (g *Group) Parent() *Group { return g.parent }

// Path implements Node.
func (g *Group) Path() string { return nodePath(g) }

func (g *Group) setParent(parent *Group) { g.parent = parent }

// String returns the group's path for diagnostics.
func (g *Group) String() string { return g.Path() }

// SettingAttributes returns the default attributes merged into children
// created from descriptions.
func (g *Group) SettingAttributes() Description { return g.settingAttrs }

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// Children returns the direct children in insertion order.
func (g *Group) Children() []Node {
	out := make([]Node, len(g.children))
	copy(out, g.children)
	return out
}

// Add attaches children to the group. Each item is either a constructed
// *Setting or *Group, or a Description to construct a setting from; group
// defaults from WithSettingAttributes are merged into descriptions for any
// attribute not explicitly given.
//
// Add fails on the first offending item with already-added items kept,
// mirroring Remove's no-rollback contract.
func (g *Group) Add(items ...Item) error {
	for _, item := range items {
		switch it := item.(type) {
		case *Setting:
			if err := g.attach(it); err != nil {
				return err
			}
		case *Group:
			for ancestor := g; ancestor != nil; ancestor = ancestor.parent {
				if ancestor == it {
					return fmt.Errorf("%w: %q", ErrSelfContainment, it.Name())
				}
			}
			if err := g.attach(it); err != nil {
				return err
			}
		case Description:
			s, err := g.createSetting(it)
			if err != nil {
				return err
			}
			if err := g.attach(s); err != nil {
				return err
			}
		default:
			return fmt.Errorf("cannot add %T to group %q", item, g.name)
		}
	}
	return nil
}

func (g *Group) attach(n Node) error {
	if err := checkName(n.Name()); err != nil {
		return err
	}
	if _, exists := g.index[n.Name()]; exists {
		return &DuplicateError{Name: n.Name(), Group: g.name}
	}
	g.children = append(g.children, n)
	g.index[n.Name()] = n
	n.setParent(g)
	return nil
}

func (g *Group) createSetting(d Description) (*Setting, error) {
	merged := d.Clone()
	for attr, value := range g.settingAttrs {
		if _, ok := merged[attr]; !ok {
			merged[attr] = value
		}
	}

	if name, ok := merged["name"].(string); ok {
		if _, exists := g.index[name]; exists {
			return nil, &DuplicateError{Name: name, Group: g.name}
		}
	}

	return newSetting(merged, g.types)
}

// Remove deletes the named children. It fails with a NotFoundError naming
// the first child not found; prior removals stay done (no rollback).
func (g *Group) Remove(names ...string) error {
	for _, name := range names {
		if _, ok := g.index[name]; !ok {
			return &NotFoundError{Name: name, Group: g.name}
		}
		node := g.index[name]
		delete(g.index, name)
		for i, child := range g.children {
			if child == node {
				g.children = append(g.children[:i], g.children[i+1:]...)
				break
			}
		}
		node.setParent(nil)
	}
	return nil
}

// Lookup resolves a child by bare name or by slash-separated path. Every
// non-final path segment must name a nested group; the final segment may
// name a setting or a group.
func (g *Group) Lookup(path string) (Node, error) {
	if !strings.Contains(path, PathSeparator) {
		child, ok := g.index[path]
		if !ok {
			return nil, &NotFoundError{Name: path, Group: g.name}
		}
		return child, nil
	}

	segments := strings.Split(path, PathSeparator)
	current := g
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current.index[segment]
		if !ok {
			return nil, &PathError{Segment: segment, Path: path}
		}
		sub, ok := child.(*Group)
		if !ok {
			return nil, &PathError{Segment: segment, Path: path}
		}
		current = sub
	}

	last := segments[len(segments)-1]
	child, ok := current.index[last]
	if !ok {
		return nil, &NotFoundError{Name: last, Path: path}
	}
	return child, nil
}

// Contains reports whether Lookup would resolve the name or path. The two
// never diverge: Contains is defined in terms of Lookup.
func (g *Group) Contains(path string) bool {
	_, err := g.Lookup(path)
	return err == nil
}

// SettingAt resolves a path that must name a setting.
func (g *Group) SettingAt(path string) (*Setting, error) {
	n, err := g.Lookup(path)
	if err != nil {
		return nil, err
	}
	s, ok := n.(*Setting)
	if !ok {
		return nil, fmt.Errorf("%q names a group, not a setting", path)
	}
	return s, nil
}

// GroupAt resolves a path that must name a nested group.
func (g *Group) GroupAt(path string) (*Group, error) {
	n, err := g.Lookup(path)
	if err != nil {
		return nil, err
	}
	sub, ok := n.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %q names a setting", ErrNotAGroup, path)
	}
	return sub, nil
}

// Value returns the value of the setting at the given path, or fallback if
// the path does not resolve to a setting.
func (g *Group) Value(path string, fallback any) any {
	s, err := g.SettingAt(path)
	if err != nil {
		return fallback
	}
	return s.Value()
}

// Entry pairs a setting's store key with its value.
type Entry struct {
	Key   string
	Value any
}

// Values exports the values of every setting in the subtree in walk order.
func (g *Group) Values() []Entry {
	var entries []Entry
	w := g.Walk(WalkOptions{})
	for n, ok := w.Next(); ok; n, ok = w.Next() {
		if s, isSetting := n.(*Setting); isSetting {
			entries = append(entries, Entry{Key: s.StoreKey(), Value: s.Value()})
		}
	}
	return entries
}

// SetValues assigns values to settings addressed by name or path. It fails
// on the first unresolvable path or invalid value.
func (g *Group) SetValues(values map[string]any) error {
	for path, value := range values {
		s, err := g.SettingAt(path)
		if err != nil {
			return err
		}
		if err := s.SetValue(value); err != nil {
			return err
		}
	}
	return nil
}
