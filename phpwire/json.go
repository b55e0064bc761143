package phpwire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts between JSON and the wire value model for tooling and
// interchange. JSON objects become ordered maps (sorted keys, since
// Go's JSON decoder loses source order); decoded objects serialize
// as JSON objects with a "__class" marker.

// FromJSON converts JSON bytes to a value.
func FromJSON(data []byte) (*Value, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("phpwire: JSON parse error: %w", err)
	}
	return fromJSONValue(v)
}

func fromJSONValue(v any) (*Value, error) {
	if v == nil {
		return Null(), nil
	}

	switch val := v.(type) {
	case bool:
		return Bool(val), nil

	case float64:
		// Integral values inside the double-exact range decode as
		// ints; everything else stays a float.
		if val == math.Trunc(val) && val >= -9007199254740991 && val <= 9007199254740991 {
			return Int(int64(val)), nil
		}
		return Float(val), nil

	case string:
		return Str(val), nil

	case []any:
		items := make([]*Value, 0, len(val))
		for i, elem := range val {
			pv, err := fromJSONValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items = append(items, pv)
		}
		return NewList(items...), nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			pv, err := fromJSONValue(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			entries = append(entries, StrEntry(k, pv))
		}
		return NewMap(entries...), nil

	default:
		return nil, fmt.Errorf("phpwire: unsupported JSON type %T", v)
	}
}

// ToJSON converts a value to JSON. Maps keep their wire entry order;
// tagged strings are transcoded to UTF-8 first; objects gain a
// "__class" property. NaN, infinities, unresolved references, and
// cyclic values have no JSON form and are rejected.
func (v *Value) ToJSON() ([]byte, error) {
	var buf bytes.Buffer
	w := &jsonWriter{seen: make(map[*Value]bool)}
	if err := w.value(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// jsonWriter tracks composites on the current path: JSON has no
// reference syntax, so a cycle is an error rather than a loop.
type jsonWriter struct {
	seen map[*Value]bool
}

func (w *jsonWriter) value(buf *bytes.Buffer, v *Value) error {
	if v.IsNull() {
		buf.WriteString("null")
		return nil
	}

	switch v.typ {
	case TypeList, TypeMap, TypeObject:
		if w.seen[v] {
			return ErrCyclicValue
		}
		w.seen[v] = true
		defer delete(w.seen, v)
	}

	switch v.typ {
	case TypeBool:
		if v.boolVal {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}

	case TypeInt:
		buf.WriteString(strconv.FormatInt(v.intVal, 10))

	case TypeFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return fmt.Errorf("phpwire: %v has no JSON representation", v.floatVal)
		}
		buf.WriteString(strconv.FormatFloat(v.floatVal, 'g', -1, 64))

	case TypeStr:
		return appendJSONString(buf, v)

	case TypeList:
		buf.WriteByte('[')
		for i, elem := range v.listVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := w.value(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	case TypeMap:
		buf.WriteByte('{')
		for i, e := range v.mapVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSONKey(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := w.value(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	case TypeObject:
		buf.WriteString(`{"__class":`)
		enc, err := json.Marshal(v.objVal.ClassName)
		if err != nil {
			return err
		}
		buf.Write(enc)
		for _, f := range v.objVal.Fields {
			buf.WriteByte(',')
			name, err := json.Marshal(f.Name)
			if err != nil {
				return err
			}
			buf.Write(name)
			buf.WriteByte(':')
			if err := w.value(buf, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	default:
		return fmt.Errorf("phpwire: %s has no JSON representation", v.typ)
	}
	return nil
}

func appendJSONString(buf *bytes.Buffer, v *Value) error {
	s, err := v.StrUTF8()
	if err != nil {
		return err
	}
	enc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}

func appendJSONKey(buf *bytes.Buffer, k *Value) error {
	if k.Type() == TypeStr {
		return appendJSONString(buf, k)
	}
	enc, err := json.Marshal(keyString(k))
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}
