// internal/entity/raw.go
package entity

import "encoding/json"

// Raw is the canonical loosely-typed input shape for normalization.
// Values may be strings, numbers, or string slices depending on the field.
type Raw map[string]interface{}

// RawFrom converts any accepted external shape into the canonical Raw map.
// Maps pass through; anything else (typically a struct coming from an API
// payload) is adapted via a JSON round-trip. The normalizer itself never
// branches on input shape.
func RawFrom(v interface{}) Raw {
	switch in := v.(type) {
	case nil:
		return Raw{}
	case Raw:
		return in
	case map[string]interface{}:
		return Raw(in)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Raw{}
		}
		var out map[string]interface{}
		if err := json.Unmarshal(data, &out); err != nil {
			return Raw{}
		}
		return Raw(out)
	}
}

func (r Raw) str(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func (r Raw) num(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := r[k].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}

func (r Raw) strs(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
