package appconf

import (
	"fmt"
	"strconv"
	"strings"
)

// Store wraps a hierarchical document tree addressed by dot-separated paths.
// Numeric path segments index into list nodes. The tree is the parsed form of
// a YAML/TOML/JSON document: map[string]any and []any nodes with scalar
// leaves.
type Store struct {
	root any
}

// NewStore wraps a parsed document tree. Handing it anything other than a
// map or list node is a programmer error and panics immediately.
func NewStore(root any) *Store {
	switch root.(type) {
	case map[string]any, []any:
	default:
		panic(fmt.Sprintf("appconf: store root must be a map or list node, got %T", root))
	}
	return &Store{root: root}
}

// Root returns the underlying document tree.
func (s *Store) Root() any { return s.root }

// Select returns the value at the dot-separated path, or nil if any segment
// is missing or does not address into the tree.
func (s *Store) Select(path string) any {
	value, ok := s.lookup(path)
	if !ok {
		return nil
	}
	return value
}

// Contains reports whether the path exists in the tree, even when its value
// is nil.
func (s *Store) Contains(path string) bool {
	_, ok := s.lookup(path)
	return ok
}

func (s *Store) lookup(path string) (any, bool) {
	current := s.root
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, exists := node[segment]
			if !exists {
				return nil, false
			}
			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}
	return current, true
}

// Flatten renders the tree as a flat map of dot-separated paths to leaf
// values. A list-rooted store flattens to an empty map; list nodes below the
// root stay as leaf values.
func (s *Store) Flatten() map[string]any {
	rootMap, ok := s.root.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return flattenTree(rootMap, "")
}

// SetPath writes value at the dot-separated path, creating intermediate maps
// as needed. Addressing failures return a *PathError naming the offending
// segment within the full key.
func (s *Store) SetPath(path string, value any) error {
	segments := strings.Split(path, ".")
	current := s.root

	for i, segment := range segments[:len(segments)-1] {
		switch node := current.(type) {
		case map[string]any:
			next, exists := node[segment]
			if !exists {
				child := make(map[string]any)
				node[segment] = child
				current = child
				continue
			}
			current = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil {
				return &PathError{Path: highlightSegment(segments, i), Reason: fmt.Sprintf("invalid list index %q", segment)}
			}
			if index < 0 || index >= len(node) {
				return &PathError{Path: highlightSegment(segments, i), Reason: fmt.Sprintf("index %d out of bounds", index)}
			}
			current = node[index]
		default:
			return &PathError{Path: highlightSegment(segments, i), Reason: fmt.Sprintf("cannot address into %T", current)}
		}
	}

	last := len(segments) - 1
	switch node := current.(type) {
	case map[string]any:
		node[segments[last]] = value
	case []any:
		index, err := strconv.Atoi(segments[last])
		if err != nil {
			return &PathError{Path: highlightSegment(segments, last), Reason: fmt.Sprintf("invalid list index %q", segments[last])}
		}
		if index < 0 || index >= len(node) {
			return &PathError{Path: highlightSegment(segments, last), Reason: fmt.Sprintf("index %d out of bounds", index)}
		}
		node[index] = value
	default:
		return &PathError{Path: highlightSegment(segments, last), Reason: fmt.Sprintf("cannot address into %T", current)}
	}

	return nil
}

// highlightSegment renders the dotted key with the failing segment wrapped in
// "**" markers, e.g. "servers.**3**.port".
func highlightSegment(segments []string, index int) string {
	parts := make([]string, len(segments))
	for i, segment := range segments {
		if i == index {
			parts[i] = "**" + segment + "**"
		} else {
			parts[i] = segment
		}
	}
	return strings.Join(parts, ".")
}
