package setting

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by tree operations.
var (
	// ErrInvalidName indicates a node name is empty or contains the path separator.
	ErrInvalidName = errors.New("invalid setting name")

	// ErrPathNotFound indicates an intermediate group in a path doesn't exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrNotFound indicates the final path segment doesn't name a child.
	ErrNotFound = errors.New("setting not found")

	// ErrDuplicateName indicates a child with the same name already exists.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrSelfContainment indicates an attempt to add a group as its own descendant.
	ErrSelfContainment = errors.New("group cannot contain itself")

	// ErrUnknownType indicates a declarative description names an unregistered type.
	ErrUnknownType = errors.New("unknown setting type")

	// ErrNotAGroup indicates a non-final path segment resolved to a setting.
	ErrNotAGroup = errors.New("not a group")
)

// PathError reports a missing intermediate group segment during path resolution.
type PathError struct {
	// Segment is the missing group name.
	Segment string
	// Path is the full path being resolved.
	Path string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("group %q in path %q does not exist", e.Segment, e.Path)
}

// Is implements error matching for PathError.
func (e *PathError) Is(target error) bool {
	return target == ErrPathNotFound
}

// NotFoundError reports a missing final path segment or a missing child.
type NotFoundError struct {
	// Name is the missing child name.
	Name string
	// Group is the group looked in, when resolving a bare name.
	Group string
	// Path is the full path, when resolving a path.
	Path string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("setting %q not found in path %q", e.Name, e.Path)
	}
	return fmt.Sprintf("setting %q not found in group %q", e.Name, e.Group)
}

// Is implements error matching for NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateError reports an attempt to add a child whose name is taken.
type DuplicateError struct {
	// Name is the conflicting child name.
	Name string
	// Group is the group the add was attempted on.
	Group string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("setting %q already exists in group %q", e.Name, e.Group)
}

// Is implements error matching for DuplicateError.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateName
}

// MissingAttrsError reports required description attributes absent during
// declarative construction. The message names exactly the missing attributes.
type MissingAttrsError struct {
	// Attrs are the missing attribute names, in registration order.
	Attrs []string
}

// Error implements the error interface.
func (e *MissingAttrsError) Error() string {
	return "missing the following required setting attributes: " + strings.Join(e.Attrs, ", ")
}

// ValueError reports a single invalid setting value.
type ValueError struct {
	// Setting is the offending setting (may be nil for detached validation).
	Setting *Setting
	// Value is the rejected value.
	Value any
	// Message describes why the value is invalid.
	Message string
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	if e.Setting != nil {
		return fmt.Sprintf("%s: %s", e.Setting.Path(), e.Message)
	}
	return e.Message
}

// ValueErrors aggregates validation failures collected across one walk,
// so a caller can report every invalid field at once.
type ValueErrors struct {
	Errors []*ValueError
}

// Error implements the error interface. The message contains one line per
// invalid setting.
func (e *ValueErrors) Error() string {
	messages := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		messages[i] = ve.Error()
	}
	return strings.Join(messages, "\n")
}

// Settings returns the offending settings in walk order.
func (e *ValueErrors) Settings() []*Setting {
	settings := make([]*Setting, 0, len(e.Errors))
	for _, ve := range e.Errors {
		if ve.Setting != nil {
			settings = append(settings, ve.Setting)
		}
	}
	return settings
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *ValueErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, ve := range e.Errors {
		errs[i] = ve
	}
	return errs
}
