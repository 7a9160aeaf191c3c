// Package deepcopy clones JSON-shaped values: maps, slices, and scalars.
package deepcopy

// Map returns a deep copy of a JSON-shaped map. Scalars are copied by value;
// nested maps and slices are cloned recursively. Anything else (which cannot
// occur in a decoded JSON document) is shared.
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Value(v)
	}
	return out
}

func Value(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Map(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Value(e)
		}
		return out
	default:
		return v
	}
}
