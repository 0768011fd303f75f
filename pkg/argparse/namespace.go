package argparse

import "sort"

// Namespace holds the parsed arguments, keyed by destination name.
//
// A Namespace is created by Parser.Parse and then shared by reference: code
// that receives one mutates it in place, it never needs to return a copy.
type Namespace map[string]any

// Get returns the value stored under key, or nil.
func (ns Namespace) Get(key string) any {
	return ns[key]
}

// Has reports whether key is present, even when its value is nil.
func (ns Namespace) Has(key string) bool {
	_, ok := ns[key]
	return ok
}

// GetString returns the value under key when it is a string.
func (ns Namespace) GetString(key string) (string, bool) {
	s, ok := ns[key].(string)
	return s, ok
}

// GetBool returns the value under key when it is a bool, false otherwise.
func (ns Namespace) GetBool(key string) bool {
	b, _ := ns[key].(bool)
	return b
}

// GetStrings returns the value under key as a string slice.
// A single string is returned as a one element slice.
func (ns Namespace) GetStrings(key string) []string {
	switch v := ns[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Delete removes key from the namespace.
func (ns Namespace) Delete(key string) {
	delete(ns, key)
}

// Update copies every entry of values into the namespace, replacing existing keys.
func (ns Namespace) Update(values map[string]any) {
	for k, v := range values {
		ns[k] = v
	}
}

// Map returns the namespace as a plain map. The map is the namespace itself, not a copy.
func (ns Namespace) Map() map[string]any {
	return ns
}

// Keys returns the namespace keys in sorted order.
func (ns Namespace) Keys() []string {
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
