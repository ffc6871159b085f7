package setting

import (
	"errors"
	"testing"
)

func newTestGroup(t *testing.T, name string, opts ...GroupOption) *Group {
	t.Helper()
	g, err := NewGroup(name, opts...)
	if err != nil {
		t.Fatalf("NewGroup(%q) failed: %v", name, err)
	}
	return g
}

func mustAdd(t *testing.T, g *Group, items ...Item) {
	t.Helper()
	if err := g.Add(items...); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
}

func TestGroup_New(t *testing.T) {
	g := newTestGroup(t, "file_settings")

	if g.Name() != "file_settings" {
		t.Errorf("Name = %q, want %q", g.Name(), "file_settings")
	}
	if g.DisplayName() != "File settings" {
		t.Errorf("DisplayName = %q, want %q", g.DisplayName(), "File settings")
	}
	if g.Len() != 0 {
		t.Errorf("Len = %d, want 0", g.Len())
	}
}

func TestGroup_New_InvalidName(t *testing.T) {
	if _, err := NewGroup(""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("NewGroup(\"\") error = %v, want ErrInvalidName", err)
	}
	if _, err := NewGroup("a/b"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("NewGroup(\"a/b\") error = %v, want ErrInvalidName", err)
	}
}

func TestGroup_Add_PreservesOrder(t *testing.T) {
	g := newTestGroup(t, "main")
	mustAdd(t, g,
		Description{"type": "string", "name": "third", "default": "c"},
		Description{"type": "string", "name": "first", "default": "a"},
		Description{"type": "string", "name": "second", "default": "b"},
	)

	want := []string{"third", "first", "second"}
	children := g.Children()
	if len(children) != len(want) {
		t.Fatalf("got %d children, want %d", len(children), len(want))
	}
	for i, name := range want {
		if children[i].Name() != name {
			t.Errorf("child[%d] = %q, want %q", i, children[i].Name(), name)
		}
	}
}

func TestGroup_Add_Duplicate(t *testing.T) {
	g := newTestGroup(t, "main")
	mustAdd(t, g, Description{"type": "bool", "name": "flag"})

	err := g.Add(Description{"type": "bool", "name": "flag"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate Add error = %v, want ErrDuplicateName", err)
	}

	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("error %v is not a *DuplicateError", err)
	}
	if dup.Name != "flag" || dup.Group != "main" {
		t.Errorf("DuplicateError = %+v, want Name=flag Group=main", dup)
	}
}

func TestGroup_AddThenRemove_RestoresOrdering(t *testing.T) {
	g := newTestGroup(t, "main")
	mustAdd(t, g,
		Description{"type": "bool", "name": "first"},
		Description{"type": "bool", "name": "second"},
	)

	mustAdd(t, g, Description{"type": "bool", "name": "transient"})
	if err := g.Remove("transient"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	children := g.Children()
	if len(children) != 2 || children[0].Name() != "first" || children[1].Name() != "second" {
		t.Errorf("child set after add+remove = %v, want [first second]", children)
	}
}

func TestGroup_Add_DuplicateLeavesGroupUnchanged(t *testing.T) {
	g := newTestGroup(t, "main")
	mustAdd(t, g, Description{"type": "string", "name": "flag", "default": "original"})

	if err := g.Add(Description{"type": "string", "name": "flag", "default": "usurper"}); err == nil {
		t.Fatal("expected duplicate error")
	}

	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}
	if got := g.Value("flag", nil); got != "original" {
		t.Errorf("flag = %v, the failed add must not replace the child", got)
	}
}

func TestGroup_Add_SelfContainment(t *testing.T) {
	outer := newTestGroup(t, "outer")
	inner := newTestGroup(t, "inner")
	mustAdd(t, outer, inner)

	if err := inner.Add(outer); !errors.Is(err, ErrSelfContainment) {
		t.Errorf("adding ancestor error = %v, want ErrSelfContainment", err)
	}
	if err := outer.Add(outer); !errors.Is(err, ErrSelfContainment) {
		t.Errorf("adding group to itself error = %v, want ErrSelfContainment", err)
	}
}

func TestGroup_Add_SettingAttributesMerged(t *testing.T) {
	g := newTestGroup(t, "main", WithSettingAttributes(Description{
		"sources": []string{"session", "persistent"},
	}))
	mustAdd(t, g,
		Description{"type": "string", "name": "inherits"},
		Description{"type": "string", "name": "overrides", "sources": []string{"session"}},
	)

	inherits, err := g.SettingAt("inherits")
	if err != nil {
		t.Fatalf("SettingAt failed: %v", err)
	}
	if got := inherits.Sources(); len(got) != 2 || got[0] != "session" || got[1] != "persistent" {
		t.Errorf("inherited sources = %v, want [session persistent]", got)
	}

	overrides, err := g.SettingAt("overrides")
	if err != nil {
		t.Fatalf("SettingAt failed: %v", err)
	}
	if got := overrides.Sources(); len(got) != 1 || got[0] != "session" {
		t.Errorf("overridden sources = %v, want [session]", got)
	}
}

func TestGroup_Remove(t *testing.T) {
	g := newTestGroup(t, "main")
	mustAdd(t, g,
		Description{"type": "bool", "name": "one"},
		Description{"type": "bool", "name": "two"},
		Description{"type": "bool", "name": "three"},
	)

	if err := g.Remove("two"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if g.Contains("two") {
		t.Error("group still contains removed setting")
	}
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}

	// No rollback: removals before the failing name stay done.
	err := g.Remove("one", "missing", "three")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove error = %v, want ErrNotFound", err)
	}
	if g.Contains("one") {
		t.Error("removal before the failing name was rolled back")
	}
	if !g.Contains("three") {
		t.Error("removals after the failing name must not happen")
	}
}

func TestGroup_Lookup_Path(t *testing.T) {
	root := newTestGroup(t, "all_settings")
	main := newTestGroup(t, "main")
	advanced := newTestGroup(t, "advanced")
	mustAdd(t, root, main)
	mustAdd(t, main, advanced)
	mustAdd(t, advanced, Description{"type": "string", "name": "file_extension", "default": "png"})

	n, err := root.Lookup("main/advanced/file_extension")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	s, ok := n.(*Setting)
	if !ok {
		t.Fatalf("Lookup returned %T, want *Setting", n)
	}
	if s.Value() != "png" {
		t.Errorf("value = %v, want png", s.Value())
	}

	// Intermediate group resolution.
	if _, err := root.Lookup("main/advanced"); err != nil {
		t.Errorf("Lookup of nested group failed: %v", err)
	}
}

func TestGroup_Lookup_Errors(t *testing.T) {
	root := newTestGroup(t, "all_settings")
	main := newTestGroup(t, "main")
	mustAdd(t, root, main)
	mustAdd(t, main, Description{"type": "bool", "name": "flag"})

	// Missing intermediate group.
	_, err := root.Lookup("missing/flag")
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing intermediate error = %v, want ErrPathNotFound", err)
	}

	// Intermediate segment names a setting.
	_, err = root.Lookup("main/flag/deeper")
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("setting as intermediate error = %v, want ErrPathNotFound", err)
	}

	// Missing final segment.
	_, err = root.Lookup("main/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing final segment error = %v, want ErrNotFound", err)
	}
}

func TestGroup_Contains_MatchesLookup(t *testing.T) {
	root := newTestGroup(t, "all_settings")
	main := newTestGroup(t, "main")
	mustAdd(t, root, main)
	mustAdd(t, main, Description{"type": "bool", "name": "flag"})

	paths := []string{
		"main", "main/flag", "main/missing", "missing",
		"missing/flag", "main/flag/deeper",
	}
	for _, path := range paths {
		_, err := root.Lookup(path)
		if got, want := root.Contains(path), err == nil; got != want {
			t.Errorf("Contains(%q) = %v, Lookup error = %v; the two must agree", path, got, err)
		}
	}
}

func TestGroup_Values(t *testing.T) {
	root := newTestGroup(t, "all_settings")
	main := newTestGroup(t, "main")
	mustAdd(t, root, main)
	mustAdd(t, main,
		Description{"type": "string", "name": "file_extension", "default": "png"},
		Description{"type": "int", "name": "quality", "default": 90},
	)

	entries := root.Values()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Store keys omit the topmost group.
	if entries[0].Key != "main/file_extension" || entries[0].Value != "png" {
		t.Errorf("entry[0] = %+v, want main/file_extension=png", entries[0])
	}
	if entries[1].Key != "main/quality" || entries[1].Value != int64(90) {
		t.Errorf("entry[1] = %+v, want main/quality=90", entries[1])
	}
}

func TestGroup_SetValues(t *testing.T) {
	root := newTestGroup(t, "all_settings")
	main := newTestGroup(t, "main")
	mustAdd(t, root, main)
	mustAdd(t, main, Description{"type": "string", "name": "file_extension", "default": "png"})

	if err := root.SetValues(map[string]any{"main/file_extension": "jpg"}); err != nil {
		t.Fatalf("SetValues failed: %v", err)
	}
	if got := root.Value("main/file_extension", nil); got != "jpg" {
		t.Errorf("value = %v, want jpg", got)
	}

	if err := root.SetValues(map[string]any{"main/missing": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetValues on missing path error = %v, want ErrNotFound", err)
	}
}

func TestGroup_FromDescription(t *testing.T) {
	root, err := GroupFromDescription(Description{
		"name": "all_settings",
		"groups": []any{
			Description{
				"name": "main",
				"setting_attributes": Description{
					"sources": []string{"persistent"},
				},
				"settings": []any{
					Description{"type": "string", "name": "file_extension", "default": "png"},
				},
				"groups": []any{
					Description{"name": "advanced", "tags": []string{"ignore_reset"}},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("GroupFromDescription failed: %v", err)
	}

	s, err := root.SettingAt("main/file_extension")
	if err != nil {
		t.Fatalf("SettingAt failed: %v", err)
	}
	if got := s.Sources(); len(got) != 1 || got[0] != "persistent" {
		t.Errorf("sources = %v, want [persistent]", got)
	}

	advanced, err := root.GroupAt("main/advanced")
	if err != nil {
		t.Fatalf("GroupAt failed: %v", err)
	}
	if !advanced.HasTag(TagIgnoreReset) {
		t.Error("nested group lost its tags")
	}
}

func TestGroup_FromDescription_MissingName(t *testing.T) {
	_, err := GroupFromDescription(Description{"groups": []any{}})
	var missing *MissingAttrsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingAttrsError", err)
	}
	if len(missing.Attrs) != 1 || missing.Attrs[0] != "name" {
		t.Errorf("missing attrs = %v, want [name]", missing.Attrs)
	}
}

func TestGroup_Path(t *testing.T) {
	root := newTestGroup(t, "all_settings")
	main := newTestGroup(t, "main")
	mustAdd(t, root, main)
	mustAdd(t, main, Description{"type": "bool", "name": "flag"})

	s, err := main.SettingAt("flag")
	if err != nil {
		t.Fatalf("SettingAt failed: %v", err)
	}
	if s.Path() != "all_settings/main/flag" {
		t.Errorf("Path = %q, want all_settings/main/flag", s.Path())
	}
	if s.StoreKey() != "main/flag" {
		t.Errorf("StoreKey = %q, want main/flag", s.StoreKey())
	}
}
