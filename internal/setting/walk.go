package setting

// WalkCallbacks are invoked while a Walker advances. Nil callbacks are
// skipped.
type WalkCallbacks struct {
	// OnVisitSetting is called just before a setting is yielded.
	OnVisitSetting func(s *Setting)

	// OnVisitGroup is called just before a group is yielded (only when
	// WalkOptions.IncludeGroups is set).
	OnVisitGroup func(g *Group)

	// OnEndGroup is called after the last descendant of a group was
	// visited. It never fires for the root group being walked.
	OnEndGroup func(g *Group)
}

// WalkOptions configure a traversal.
type WalkOptions struct {
	// Include decides per node whether it is yielded. Nil includes
	// everything.
	Include func(n Node) bool

	// IncludeGroups yields groups themselves, before their descendants.
	IncludeGroups bool

	// IncludeIfParentExcluded still descends into groups rejected by
	// Include, testing their children individually; the excluded group
	// itself is never yielded.
	IncludeIfParentExcluded bool

	// Callbacks are invoked as the walk advances.
	Callbacks WalkCallbacks
}

// Walker is a lazy pre-order depth-first traversal over a group's subtree.
// It keeps its own explicit stack of open groups, so it can be suspended
// and resumed across multiple Next calls from nested call sites, and
// several walkers over the same tree never interfere.
//
// A Walker is single-pass; call Group.Walk again to restart. Advancing one
// walker from multiple goroutines is not supported; the tree assumes one
// logical owner at a time.
type Walker struct {
	root  *Group
	opts  WalkOptions
	stack []*walkFrame
}

type walkFrame struct {
	group *Group
	pos   int
}

// Walk starts a traversal of the group's subtree.
func (g *Group) Walk(opts WalkOptions) *Walker {
	if opts.Include == nil {
		opts.Include = func(Node) bool { return true }
	}
	return &Walker{
		root:  g,
		opts:  opts,
		stack: []*walkFrame{{group: g}},
	}
}

// Next returns the next node of the traversal, or false when the walk is
// exhausted. Draining the walker fires OnEndGroup exactly once per visited
// group, after its last descendant.
func (w *Walker) Next() (Node, bool) {
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]

		if top.pos >= len(top.group.children) {
			w.stack = w.stack[:len(w.stack)-1]
			if top.group != w.root && w.opts.Callbacks.OnEndGroup != nil {
				w.opts.Callbacks.OnEndGroup(top.group)
			}
			continue
		}

		child := top.group.children[top.pos]
		top.pos++

		switch c := child.(type) {
		case *Group:
			if w.opts.Include(c) {
				w.stack = append(w.stack, &walkFrame{group: c})
				if w.opts.IncludeGroups {
					if cb := w.opts.Callbacks.OnVisitGroup; cb != nil {
						cb(c)
					}
					return c, true
				}
			} else if w.opts.IncludeIfParentExcluded {
				w.stack = append(w.stack, &walkFrame{group: c})
			}
		case *Setting:
			if w.opts.Include(c) {
				if cb := w.opts.Callbacks.OnVisitSetting; cb != nil {
					cb(c)
				}
				return c, true
			}
		}
	}
	return nil, false
}

// Each drains the walker, calling fn for every remaining node.
func (w *Walker) Each(fn func(n Node)) {
	for n, ok := w.Next(); ok; n, ok = w.Next() {
		fn(n)
	}
}

// Settings drains the walker and collects the remaining settings in walk
// order.
func (w *Walker) Settings() []*Setting {
	var settings []*Setting
	w.Each(func(n Node) {
		if s, ok := n.(*Setting); ok {
			settings = append(settings, s)
		}
	})
	return settings
}
