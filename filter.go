package fieldselector

// FilterMap returns a new map containing exactly the entries of obj whose
// key is in the selection. Values are carried over unchanged, with no deep
// copy. Selected fields absent from obj are simply not present in the
// result. The selection is not re-validated against any schema, so field
// sets constructed outside a Selector work just as well.
func FilterMap[V any](obj map[string]V, sel Selection) map[string]V {
	result := make(map[string]V, sel.Len())
	for k, v := range obj {
		if sel.Include(k) {
			result[k] = v
		}
	}
	return result
}

// Entry is a single key/value pair of an ordered object representation.
type Entry[V any] struct {
	Key   string
	Value V
}

// FilterEntries returns the entries whose key is in the selection,
// preserving the input order. It is the order-preserving counterpart of
// FilterMap for callers that represent objects as ordered key/value
// sequences before serialization.
func FilterEntries[V any](entries []Entry[V], sel Selection) []Entry[V] {
	result := make([]Entry[V], 0, len(entries))
	for _, e := range entries {
		if sel.Include(e.Key) {
			result = append(result, e)
		}
	}
	return result
}
