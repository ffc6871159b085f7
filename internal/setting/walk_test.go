package setting

import (
	"testing"
)

// buildWalkTree builds:
//
//	all_settings
//	├── file_extension
//	├── main
//	│   ├── output_directory
//	│   └── advanced
//	│       └── layer_filename_pattern
//	└── gui [ignore_reset]
//	    └── show_more_settings
func buildWalkTree(t *testing.T) *Group {
	t.Helper()

	root := newTestGroup(t, "all_settings")
	main := newTestGroup(t, "main")
	advanced := newTestGroup(t, "advanced")
	gui := newTestGroup(t, "gui", WithTags(TagIgnoreReset))

	mustAdd(t, root, Description{"type": "string", "name": "file_extension", "default": "png"})
	mustAdd(t, root, main)
	mustAdd(t, main, Description{"type": "string", "name": "output_directory", "default": "out"})
	mustAdd(t, main, advanced)
	mustAdd(t, advanced, Description{"type": "string", "name": "layer_filename_pattern", "default": "[layer name]"})
	mustAdd(t, root, gui)
	mustAdd(t, gui, Description{"type": "bool", "name": "show_more_settings"})

	return root
}

func walkNames(w *Walker) []string {
	var names []string
	w.Each(func(n Node) {
		names = append(names, n.Name())
	})
	return names
}

func TestWalker_PreOrder(t *testing.T) {
	root := buildWalkTree(t)

	got := walkNames(root.Walk(WalkOptions{}))
	want := []string{"file_extension", "output_directory", "layer_filename_pattern", "show_more_settings"}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visited %v, want %v", got, want)
		}
	}
}

func TestWalker_IncludeGroups(t *testing.T) {
	root := buildWalkTree(t)

	got := walkNames(root.Walk(WalkOptions{IncludeGroups: true}))
	want := []string{
		"file_extension",
		"main", "output_directory", "advanced", "layer_filename_pattern",
		"gui", "show_more_settings",
	}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visited %v, want %v", got, want)
		}
	}
}

func TestWalker_TagFilter(t *testing.T) {
	root := buildWalkTree(t)

	// gui is tagged ignore_reset; its subtree is skipped entirely.
	got := walkNames(root.Walk(WalkOptions{Include: ExcludeTag(TagIgnoreReset)}))
	for _, name := range got {
		if name == "show_more_settings" {
			t.Error("walk descended into an excluded group")
		}
	}
}

func TestWalker_IncludeIfParentExcluded(t *testing.T) {
	root := buildWalkTree(t)

	// The gui group is excluded, but its children are still tested
	// individually and included.
	w := root.Walk(WalkOptions{
		Include:                 ExcludeTag(TagIgnoreReset),
		IncludeIfParentExcluded: true,
	})
	found := false
	for _, name := range walkNames(w) {
		if name == "show_more_settings" {
			found = true
		}
		if name == "gui" {
			t.Error("excluded group must not itself be yielded")
		}
	}
	if !found {
		t.Error("children of excluded group were not visited")
	}
}

func TestWalker_EndGroupCallbacks(t *testing.T) {
	root := buildWalkTree(t)

	var ended []string
	w := root.Walk(WalkOptions{
		Callbacks: WalkCallbacks{
			OnEndGroup: func(g *Group) { ended = append(ended, g.Name()) },
		},
	})
	w.Each(func(Node) {})

	// advanced closes before main; the walked root never fires.
	want := []string{"advanced", "main", "gui"}
	if len(ended) != len(want) {
		t.Fatalf("ended groups %v, want %v", ended, want)
	}
	for i := range want {
		if ended[i] != want[i] {
			t.Fatalf("ended groups %v, want %v", ended, want)
		}
	}
}

func TestWalker_VisitCallbacks(t *testing.T) {
	root := buildWalkTree(t)

	var settings, groups int
	w := root.Walk(WalkOptions{
		IncludeGroups: true,
		Callbacks: WalkCallbacks{
			OnVisitSetting: func(*Setting) { settings++ },
			OnVisitGroup:   func(*Group) { groups++ },
		},
	})
	w.Each(func(Node) {})

	if settings != 4 {
		t.Errorf("visited %d settings, want 4", settings)
	}
	if groups != 3 {
		t.Errorf("visited %d groups, want 3", groups)
	}
}

func TestWalker_Suspended(t *testing.T) {
	root := buildWalkTree(t)

	// Two walkers over the same tree advance independently.
	w1 := root.Walk(WalkOptions{})
	w2 := root.Walk(WalkOptions{})

	n1, ok := w1.Next()
	if !ok || n1.Name() != "file_extension" {
		t.Fatalf("w1 first = %v, want file_extension", n1)
	}
	n1, ok = w1.Next()
	if !ok || n1.Name() != "output_directory" {
		t.Fatalf("w1 second = %v, want output_directory", n1)
	}

	n2, ok := w2.Next()
	if !ok || n2.Name() != "file_extension" {
		t.Fatalf("w2 must start from the beginning, got %v", n2)
	}
}

func TestWalker_EmptyGroup(t *testing.T) {
	g := newTestGroup(t, "empty")
	if _, ok := g.Walk(WalkOptions{}).Next(); ok {
		t.Error("walk over empty group must be exhausted immediately")
	}
}
