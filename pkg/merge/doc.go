// Package merge implements the layered map merge used by every configuration
// middleware in argware.
//
// Values coming from defaults, configuration files, environment variables and
// inline overrides are all reduced to map[string]any and combined with Merge.
// Two knobs decide the outcome when a key appears in more than one layer:
//
//   - Overwrite: later layers replace earlier values (last wins) instead of
//     only filling keys that are still missing (first wins).
//   - Recurse: nested maps are merged key by key instead of being replaced or
//     kept as a whole.
//
// Both knobs are carried unchanged into nested merges. Merging is associative
// as long as the same Options are used for the whole chain:
//
//	merge.Merge(o, merge.Merge(o, a, b), c) == merge.Merge(o, a, b, c)
//
// Mixing different Options within one chain is allowed but the result then
// depends on how the calls are grouped.
package merge
