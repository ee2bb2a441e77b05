// services/output/internal/util/util.go
package util

import "encoding/json"

// DecodeJSON folds the bus payload forms into one typed decode: raw bytes and
// strings parse directly, anything else re-marshals through JSON.
func DecodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

// AsBytes extracts a raw byte payload without re-encoding. Document and
// frame payloads arrive as []byte from local callers and as string from
// bridged ones.
func AsBytes(src any) ([]byte, bool) {
	switch v := src.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	case json.RawMessage:
		return v, true
	default:
		return nil, false
	}
}
