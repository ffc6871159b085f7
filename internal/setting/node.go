package setting

// Node is a member of the settings tree: either a Setting leaf or a Group.
// The union is closed; the tree walker and path resolver operate purely on
// this capability and type-switch on the two variants.
type Node interface {
	// Name uniquely identifies the node among its siblings.
	Name() string

	// DisplayName is the node name in human-readable form.
	DisplayName() string

	// Description documents the node in more detail.
	Description() string

	// HasTag reports whether the node carries the given tag.
	HasTag(tag string) bool

	// Tags returns the node's tags in insertion order.
	Tags() []string

	// Parent returns the owning group, or nil for a detached node.
	Parent() *Group

	// Path is the slash-separated path from the topmost ancestor to this
	// node, computed on demand from parent links.
	Path() string

	setParent(g *Group)
}

// Item is anything that can be added to a Group: a constructed Setting or
// Group, or a declarative Description to construct one from.
type Item interface {
	item()
}

func (*Setting) item()    {}
func (*Group) item()      {}
func (Description) item() {}

// ExcludeTag returns an inclusion predicate for Walk that skips nodes
// carrying the given tag. Every bulk operation is expressed as one such
// predicate composed with the walker.
func ExcludeTag(tag string) func(Node) bool {
	return func(n Node) bool {
		return !n.HasTag(tag)
	}
}

// Tags carried by nodes to exempt them from bulk operations.
const (
	// TagIgnoreReset exempts a node from Group.Reset.
	TagIgnoreReset = "ignore_reset"

	// TagIgnoreLoad exempts a node from group loads.
	TagIgnoreLoad = "ignore_load"

	// TagIgnoreSave exempts a node from group saves.
	TagIgnoreSave = "ignore_save"

	// TagIgnoreInitGUI exempts a node from Group.BindPresenters.
	TagIgnoreInitGUI = "ignore_initialize_gui"

	// TagIgnoreApplyGUI exempts a node from Group.ApplyPresenterValues.
	TagIgnoreApplyGUI = "ignore_apply_gui_value_to_setting"
)

// tagSet stores a node's tags preserving insertion order.
type tagSet struct {
	order []string
	set   map[string]struct{}
}

func newTagSet(tags []string) tagSet {
	ts := tagSet{set: make(map[string]struct{}, len(tags))}
	for _, tag := range tags {
		ts.add(tag)
	}
	return ts
}

func (ts *tagSet) add(tag string) {
	if _, ok := ts.set[tag]; ok {
		return
	}
	ts.set[tag] = struct{}{}
	ts.order = append(ts.order, tag)
}

func (ts *tagSet) has(tag string) bool {
	_, ok := ts.set[tag]
	return ok
}

func (ts *tagSet) all() []string {
	out := make([]string, len(ts.order))
	copy(out, ts.order)
	return out
}
