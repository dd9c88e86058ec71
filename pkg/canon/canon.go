// Package canon provides deterministic canonical JSON serialization used
// everywhere a byte-identical representation must be hashed or signed.
package canon

import (
	"encoding/json"
	"fmt"
	"sort"
)

// JSON produces the canonical JSON encoding of v: object keys recursively
// sorted at every depth, no inter-token whitespace, arrays keep positional
// order with their elements themselves canonicalized.
//
// v may be a plain map/slice/scalar or any value encodable by
// encoding/json (structs, pointers, etc). Structs are round-tripped
// through a generic representation first so field ordering never leaks
// into the signed bytes.
func JSON(v interface{}) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, fmt.Errorf("canon: failed to normalize value: %w", err)
	}
	return encode(sortKeys(generic))
}

// toGeneric round-trips v through encoding/json so that struct field tags,
// omitempty, and custom marshalers are already applied before canonicalization.
func toGeneric(v interface{}) (interface{}, error) {
	switch v.(type) {
	case map[string]interface{}, []interface{}, nil, string, float64, bool:
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// sortKeys recursively rebuilds maps with sorted key iteration order.
// Go's encoding/json already sorts map[string]interface{} keys during
// Marshal, but we make the ordering explicit here so the guarantee holds
// regardless of how the tree was constructed.
func sortKeys(obj interface{}) interface{} {
	switch v := obj.(type) {
	case map[string]interface{}:
		sorted := make(map[string]interface{}, len(v))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sorted[k] = sortKeys(v[k])
		}
		return sorted
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = sortKeys(item)
		}
		return out
	default:
		return v
	}
}

// encode marshals a canonicalized tree with no extra whitespace.
// json.Marshal already sorts map[string]interface{} keys and emits no
// inter-token whitespace, so once the tree is built from sortKeys this
// is a direct encode.
func encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Equal reports whether two values canonicalize to byte-identical JSON.
func Equal(a, b interface{}) (bool, error) {
	ca, err := JSON(a)
	if err != nil {
		return false, err
	}
	cb, err := JSON(b)
	if err != nil {
		return false, err
	}
	return string(ca) == string(cb), nil
}
