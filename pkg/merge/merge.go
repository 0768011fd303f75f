package merge

import "strings"

// Options controls how Merge resolves keys present in more than one layer.
type Options struct {
	// Overwrite lets a later layer replace a value already present in the
	// accumulated result. When false the first value seen for a key wins.
	Overwrite bool
	// Recurse merges nested maps key by key instead of treating them as
	// opaque values. The same Options apply at every depth.
	Recurse bool
}

// DefaultOptions overwrites earlier values and merges nested maps.
var DefaultOptions = Options{Overwrite: true, Recurse: true}

// Merge combines base with each layer, left to right, and returns the result.
//
// For every key of every layer:
//   - a key missing from the accumulated result is inserted;
//   - when both values are maps and opts.Recurse is set, they are merged
//     recursively with the same opts;
//   - otherwise the existing value is kept, unless opts.Overwrite is set.
//
// Merge never modifies base, the layers or any map nested inside them: every
// branch that changes is rebuilt as a new map. Conflicting types (a map against
// a scalar, a list against a map) are resolved by the overwrite rule, never by
// an error.
func Merge(opts Options, base map[string]any, layers ...map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for _, layer := range layers {
		for key, value := range layer {
			existing, ok := result[key]
			if !ok {
				result[key] = value
				continue
			}

			if opts.Recurse {
				existingMap, existingIsMap := existing.(map[string]any)
				valueMap, valueIsMap := value.(map[string]any)
				if existingIsMap && valueIsMap {
					result[key] = Merge(opts, existingMap, valueMap)
					continue
				}
			}

			if opts.Overwrite {
				result[key] = value
			}
		}
	}

	return result
}

// SplitPath turns a dotted node path such as "servers.primary" into its segments.
// Empty segments are dropped, so "" yields no segments at all.
func SplitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, ".") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// Lookup walks path through nested maps of m and returns the value found at the end.
// An empty path returns m itself.
func Lookup(m map[string]any, path []string) (any, bool) {
	var current any = m
	for _, segment := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
