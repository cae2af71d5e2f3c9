package blockfield

import (
	"fmt"
	"reflect"
)

// StreamItem is one element of a stream value: the child type name and that
// child's value.
type StreamItem struct {
	Type  string `msgpack:"type" yaml:"type" json:"type"`
	Value any    `msgpack:"value" yaml:"value" json:"value"`
}

// Values reach blocks from several decoders (msgpack, YAML, literal Go), so
// the helpers below accept the generic shapes each of them produce.

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []StreamItem:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out
}

func asStreamItems(v any) []StreamItem {
	if items, ok := v.([]StreamItem); ok {
		return items
	}
	list := asList(v)
	out := make([]StreamItem, 0, len(list))
	for _, raw := range list {
		switch t := raw.(type) {
		case StreamItem:
			out = append(out, t)
		case *StreamItem:
			if t != nil {
				out = append(out, *t)
			}
		default:
			m := asMap(raw)
			if m == nil {
				continue
			}
			out = append(out, StreamItem{Type: asString(m["type"]), Value: m["value"]})
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	}
	return fmt.Sprint(v)
}
