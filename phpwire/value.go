package phpwire

import (
	"fmt"
	"strconv"
)

// PType represents phpwire value types.
type PType uint8

const (
	TypeNull PType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeStr
	TypeList   // array with sequential integer keys 0..n-1
	TypeMap    // array with arbitrary keys, order preserved
	TypeObject // class instance or generic record
	TypeRef    // back-reference, decode-internal only
)

// String returns the type name.
func (t PType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeStr:
		return "str"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	case TypeObject:
		return "object"
	case TypeRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Value represents a decoded or to-be-encoded wire value.
type Value struct {
	typ PType

	// Scalar values (only one valid based on typ)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string // raw bytes in the original encoding
	charset  string // declared text encoding, "" means UTF-8

	// Container values
	listVal []*Value
	mapVal  []Entry
	objVal  *ObjectValue

	// Back-reference target index
	refVal int
}

// Entry represents a key-value pair in a map. Keys are values
// themselves since the wire format allows both int and string keys.
type Entry struct {
	Key   *Value
	Value *Value
}

// Field represents a named object field.
type Field struct {
	Name  string
	Value *Value
}

// ObjectValue represents a decoded object: the class name exactly as
// it appeared on the wire, fields in wire order, and the constructed
// instance when the class was resolved through a ClassMap (nil for
// the generic record fallback).
type ObjectValue struct {
	ClassName string
	Fields    []Field
	Instance  any
}

// Get returns a field value by name, or nil.
func (o *ObjectValue) Get(name string) *Value {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Set sets a field value, appending if the name is new.
func (o *ObjectValue) Set(name string, v *Value) {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			o.Fields[i].Value = v
			return
		}
	}
	o.Fields = append(o.Fields, Field{Name: name, Value: v})
}

// FieldLister is implemented by values that expose an ordered field
// list for encoding. Such values serialize as objects.
type FieldLister interface {
	PhpFields() []Field
}

// ClassNamer optionally overrides the wire class name of a
// FieldLister or struct. Without it the lower-cased Go type name is
// used.
type ClassNamer interface {
	PhpClass() string
}

// FieldSetter is implemented by ClassMap targets that want to receive
// decoded fields themselves instead of via reflection.
type FieldSetter interface {
	SetPhpField(name string, v *Value) error
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{typ: TypeNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{typ: TypeBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{typ: TypeInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{typ: TypeFloat, floatVal: v}
}

// Str creates a string value holding UTF-8 text.
func Str(v string) *Value {
	return &Value{typ: TypeStr, strVal: v}
}

// StrCharset creates a string value holding raw bytes in the named
// text encoding. An empty charset means UTF-8.
func StrCharset(raw, charset string) *Value {
	return &Value{typ: TypeStr, strVal: raw, charset: charset}
}

// NewList creates a list value.
func NewList(values ...*Value) *Value {
	return &Value{typ: TypeList, listVal: values}
}

// NewMap creates a map value from ordered entries.
func NewMap(entries ...Entry) *Value {
	return &Value{typ: TypeMap, mapVal: entries}
}

// NewObject creates an object value.
func NewObject(className string, fields ...Field) *Value {
	return &Value{
		typ: TypeObject,
		objVal: &ObjectValue{
			ClassName: className,
			Fields:    fields,
		},
	}
}

// StrEntry creates a map entry with a string key.
func StrEntry(key string, v *Value) Entry {
	return Entry{Key: Str(key), Value: v}
}

// IntEntry creates a map entry with an integer key.
func IntEntry(key int64, v *Value) Entry {
	return Entry{Key: Int(key), Value: v}
}

// ============================================================
// Accessors
// ============================================================

// Type returns the value type.
func (v *Value) Type() PType {
	if v == nil {
		return TypeNull
	}
	return v.typ
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.typ == TypeNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("phpwire: nil value")
	}
	if v.typ != TypeBool {
		return false, fmt.Errorf("phpwire: expected bool, got %s", v.typ)
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("phpwire: nil value")
	}
	if v.typ != TypeInt {
		return 0, fmt.Errorf("phpwire: expected int, got %s", v.typ)
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("phpwire: nil value")
	}
	if v.typ != TypeFloat {
		return 0, fmt.Errorf("phpwire: expected float, got %s", v.typ)
	}
	return v.floatVal, nil
}

// AsStr returns the raw string bytes. Use StrUTF8 to transcode a
// tagged string into UTF-8.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("phpwire: nil value")
	}
	if v.typ != TypeStr {
		return "", fmt.Errorf("phpwire: expected str, got %s", v.typ)
	}
	return v.strVal, nil
}

// Charset returns the declared text encoding of a string value.
func (v *Value) Charset() string {
	if v == nil || v.charset == "" {
		return DefaultCharset
	}
	return v.charset
}

// AsList returns the list elements.
func (v *Value) AsList() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("phpwire: nil value")
	}
	if v.typ != TypeList {
		return nil, fmt.Errorf("phpwire: expected list, got %s", v.typ)
	}
	return v.listVal, nil
}

// AsMap returns the ordered map entries.
func (v *Value) AsMap() ([]Entry, error) {
	if v == nil {
		return nil, fmt.Errorf("phpwire: nil value")
	}
	if v.typ != TypeMap {
		return nil, fmt.Errorf("phpwire: expected map, got %s", v.typ)
	}
	return v.mapVal, nil
}

// AsObject returns the object value.
func (v *Value) AsObject() (*ObjectValue, error) {
	if v == nil {
		return nil, fmt.Errorf("phpwire: nil value")
	}
	if v.typ != TypeObject {
		return nil, fmt.Errorf("phpwire: expected object, got %s", v.typ)
	}
	return v.objVal, nil
}

// Len returns the length of a list, map, or object.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.typ {
	case TypeList:
		return len(v.listVal)
	case TypeMap:
		return len(v.mapVal)
	case TypeObject:
		return len(v.objVal.Fields)
	default:
		return 0
	}
}

// Get returns a map entry or object field by key. Integer map keys
// match their decimal spelling.
func (v *Value) Get(key string) *Value {
	if v == nil {
		return nil
	}
	switch v.typ {
	case TypeMap:
		for _, e := range v.mapVal {
			if keyString(e.Key) == key {
				return e.Value
			}
		}
	case TypeObject:
		return v.objVal.Get(key)
	}
	return nil
}

// Index returns the i-th element of a list.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.typ != TypeList {
		return nil, fmt.Errorf("phpwire: not a list")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("phpwire: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// keyString renders a map key for lookup and session framing.
func keyString(k *Value) string {
	if k == nil {
		return ""
	}
	switch k.typ {
	case TypeStr:
		return k.strVal
	case TypeInt:
		return strconv.FormatInt(k.intVal, 10)
	case TypeBool:
		if k.boolVal {
			return "1"
		}
		return "0"
	case TypeFloat:
		return strconv.FormatFloat(k.floatVal, 'g', -1, 64)
	default:
		return k.typ.String()
	}
}
