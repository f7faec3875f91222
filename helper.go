package appconf

import (
	"strconv"
	"strings"
)

// selectPath walks a parsed document tree by dot-separated path. Numeric
// segments index into list nodes. The second return reports whether the path
// exists; a present key with a nil value returns (nil, true).
func selectPath(root any, path string) (any, bool) {
	current := root
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

// deepMerge merges overlay into base, recursing into maps. Overlay values win
// on conflict; lists and scalars are replaced outright. Neither input is
// modified.
func deepMerge(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overlay {
		overlayMap, overlayIsMap := value.(map[string]any)
		baseMap, baseIsMap := merged[key].(map[string]any)
		if overlayIsMap && baseIsMap {
			merged[key] = deepMerge(baseMap, overlayMap)
		} else {
			merged[key] = value
		}
	}
	return merged
}

// flattenTree converts a nested map to a flat map with dot-notation paths.
func flattenTree(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nestedMap, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenTree(nestedMap, path) {
				flat[subPath] = subValue
			}
		} else {
			flat[path] = value
		}
	}
	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path,
// creating intermediate maps as needed. A non-map intermediate is replaced.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if exists {
			if nextMap, isMap := next.(map[string]any); isMap {
				current = nextMap
				continue
			}
		}
		child := make(map[string]any)
		current[segment] = child
		current = child
	}

	current[segments[len(segments)-1]] = value
}

// isValidKeySegment checks if a single path segment is a valid bare key:
// letters, digits, underscores, and dashes, with no embedded dots.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
