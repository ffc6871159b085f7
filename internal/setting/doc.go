// Package setting implements the hierarchical settings tree at the core of
// layerport.
//
// A tree is built from two node kinds: Setting leaves holding named, typed
// values and Group containers holding ordered children. Nodes are addressed
// by slash-separated paths, carry tags that exempt them from bulk
// operations, and declare the identifiers of the backing stores their
// values persist to.
//
// Every bulk operation (reset, load, save, presenter binding, presenter
// value application) is an inclusion predicate composed with the single
// tree walker; no operation re-implements traversal. Persistence itself
// lives in the persist subpackage, concrete backing stores in source.
//
// Trees are not safe for concurrent use. The design assumes the
// single-threaded, GUI-event-driven context they are normally owned by:
// one logical owner at a time, traversals advanced sequentially.
package setting
