package setting

import (
	"fmt"
	"strings"
)

// PathSeparator joins node names into slash-delimited paths.
const PathSeparator = "/"

// checkName validates a node name. Names must be non-empty and must not
// contain the path separator, otherwise paths would be ambiguous.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if strings.Contains(name, PathSeparator) {
		return fmt.Errorf("%w: %q must not contain %q", ErrInvalidName, name, PathSeparator)
	}
	return nil
}

// displayNameFor derives a display name from the node name when none is given:
// underscores become spaces and the first letter is capitalized.
func displayNameFor(displayName, name string) string {
	if displayName != "" {
		return displayName
	}
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// descriptionFor derives a description from the display name when none is
// given. Underscores used as GUI mnemonics are stripped.
func descriptionFor(description, displayName string) string {
	if description != "" {
		return description
	}
	return strings.ReplaceAll(displayName, "_", "")
}

// nodePath computes the full slash-separated path of a node by walking its
// parent links up to the topmost group. Paths are never stored.
func nodePath(n Node) string {
	parts := []string{n.Name()}
	for g := n.Parent(); g != nil; g = g.Parent() {
		parts = append(parts, g.Name())
	}
	reverse(parts)
	return strings.Join(parts, PathSeparator)
}

// storeKey computes the path of a node with the topmost ancestor omitted.
// Backing stores key entries by this value so that renaming the root group
// does not invalidate persisted data.
func storeKey(n Node) string {
	var parts []string
	for g := n.Parent(); g != nil; g = g.Parent() {
		parts = append(parts, g.Name())
	}
	if len(parts) == 0 {
		return n.Name()
	}
	reverse(parts)
	parts = append(parts[1:], n.Name())
	return strings.Join(parts, PathSeparator)
}

func reverse(parts []string) {
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
}
