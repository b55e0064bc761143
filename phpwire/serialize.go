package phpwire

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds recursion on both the encode and decode
// paths. Inputs nested deeper fail with *DepthError instead of
// exhausting the goroutine stack.
const DefaultMaxDepth = 512

// SerializeOptions configures the serializer.
type SerializeOptions struct {
	// Assoc treats a list whose first element is a two-element pair
	// as a sequence of (key, value) pairs instead of a plain list.
	Assoc bool

	// MaxDepth caps structural recursion (default DefaultMaxDepth).
	MaxDepth int
}

// DefaultSerializeOptions returns the default options.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{MaxDepth: DefaultMaxDepth}
}

// Serialize encodes a value to wire-format text.
func Serialize(v any) (string, error) {
	return SerializeWithOptions(v, DefaultSerializeOptions())
}

// SerializeWithOptions encodes a value with custom options.
func SerializeWithOptions(v any, opts SerializeOptions) (string, error) {
	s := newSerializer(opts)
	if err := s.emit(v, 0); err != nil {
		return "", err
	}
	return s.sb.String(), nil
}

// serializer holds per-call encode state: the output buffer, the
// value-index counter, and the identity table for emitted objects.
type serializer struct {
	sb   strings.Builder
	opts SerializeOptions
	next int         // next composite value index
	seen map[any]int // object identity -> assigned index
}

func newSerializer(opts SerializeOptions) *serializer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &serializer{opts: opts, seen: make(map[any]int)}
}

func (s *serializer) emit(v any, depth int) error {
	if depth > s.opts.MaxDepth {
		return &DepthError{Depth: s.opts.MaxDepth}
	}

	switch val := v.(type) {
	case nil:
		s.sb.WriteString("N;")
		return nil
	case *Value:
		return s.emitValue(val, depth)
	case bool:
		s.emitBool(val)
		return nil
	case int:
		s.emitInt(int64(val))
		return nil
	case int8:
		s.emitInt(int64(val))
		return nil
	case int16:
		s.emitInt(int64(val))
		return nil
	case int32:
		s.emitInt(int64(val))
		return nil
	case int64:
		s.emitInt(val)
		return nil
	case uint:
		return s.emitUint(uint64(val))
	case uint8:
		s.emitInt(int64(val))
		return nil
	case uint16:
		s.emitInt(int64(val))
		return nil
	case uint32:
		s.emitInt(int64(val))
		return nil
	case uint64:
		return s.emitUint(val)
	case float32:
		s.emitFloat(float64(val))
		return nil
	case float64:
		s.emitFloat(val)
		return nil
	case string:
		s.emitString(val)
		return nil
	case []byte:
		s.emitString(string(val))
		return nil
	case []any:
		return s.emitList(val, depth)
	case map[string]any:
		return s.emitStringMap(val, depth)
	}

	if fl, ok := v.(FieldLister); ok {
		return s.emitFieldLister(fl, depth)
	}
	return s.emitReflected(v, depth)
}

// emitReflected handles pointers, structs, and slices/maps of
// concrete element types that the fast-path switch misses.
func (s *serializer) emitReflected(v any, depth int) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			s.sb.WriteString("N;")
			return nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return s.emitStruct(rv.Elem(), v, depth)
		}
		return s.emit(rv.Elem().Interface(), depth)

	case reflect.Struct:
		// Value-typed records have no address, so no identity: each
		// occurrence serializes independently.
		return s.emitStruct(rv, nil, depth)

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			s.sb.WriteString("N;")
			return nil
		}
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return s.emitList(elems, depth)

	case reflect.Map:
		if rv.IsNil() {
			s.sb.WriteString("N;")
			return nil
		}
		return s.emitReflectedMap(rv, depth)

	default:
		return &UnsupportedTypeError{GoType: fmt.Sprintf("%T", v)}
	}
}

// ============================================================
// Scalars
// ============================================================

func (s *serializer) emitBool(b bool) {
	if b {
		s.sb.WriteString("b:1;")
	} else {
		s.sb.WriteString("b:0;")
	}
}

func (s *serializer) emitInt(i int64) {
	s.sb.WriteString("i:")
	s.sb.WriteString(strconv.FormatInt(i, 10))
	s.sb.WriteString(";")
}

// emitUint rejects values above the signed range: the wire integer is
// 64-bit signed, and a silent wrap would flip the sign on round-trip.
func (s *serializer) emitUint(u uint64) error {
	if u > math.MaxInt64 {
		return &UnsupportedTypeError{GoType: fmt.Sprintf("uint64 value %d (overflows the wire integer)", u)}
	}
	s.emitInt(int64(u))
	return nil
}

func (s *serializer) emitFloat(f float64) {
	s.sb.WriteString("d:")
	switch {
	case math.IsNaN(f):
		s.sb.WriteString("NAN")
	case math.IsInf(f, 1):
		s.sb.WriteString("INF")
	case math.IsInf(f, -1):
		s.sb.WriteString("-INF")
	default:
		s.sb.WriteString(strconv.FormatFloat(f, 'G', -1, 64))
	}
	s.sb.WriteString(";")
}

// emitString writes a length-prefixed string token. The length is the
// raw byte count, never the rune count.
func (s *serializer) emitString(str string) {
	s.sb.WriteString("s:")
	s.sb.WriteString(strconv.Itoa(len(str)))
	s.sb.WriteString(":\"")
	s.sb.WriteString(str)
	s.sb.WriteString("\";")
}

// ============================================================
// Arrays
// ============================================================

func (s *serializer) emitList(elems []any, depth int) error {
	s.next++ // arrays consume a value index but are never shared

	if s.opts.Assoc && len(elems) > 0 {
		if _, _, ok := pairOf(elems[0]); ok {
			return s.emitPairs(elems, depth)
		}
	}

	s.sb.WriteString("a:")
	s.sb.WriteString(strconv.Itoa(len(elems)))
	s.sb.WriteString(":{")
	for i, elem := range elems {
		s.emitInt(int64(i))
		if err := s.emit(elem, depth+1); err != nil {
			return err
		}
	}
	s.sb.WriteString("}")
	return nil
}

// emitPairs writes a list of (key, value) pairs as an associative
// array, preserving order and duplicate keys.
func (s *serializer) emitPairs(elems []any, depth int) error {
	s.sb.WriteString("a:")
	s.sb.WriteString(strconv.Itoa(len(elems)))
	s.sb.WriteString(":{")
	for _, elem := range elems {
		k, v, ok := pairOf(elem)
		if !ok {
			return ErrNotAssociative
		}
		if err := s.emit(k, depth+1); err != nil {
			return err
		}
		if err := s.emit(v, depth+1); err != nil {
			return err
		}
	}
	s.sb.WriteString("}")
	return nil
}

// pairOf destructures a two-element slice or array.
func pairOf(elem any) (key, value any, ok bool) {
	rv := reflect.ValueOf(elem)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() != 2 {
		return nil, nil, false
	}
	return rv.Index(0).Interface(), rv.Index(1).Interface(), true
}

// emitStringMap writes a Go map in sorted-key order. Go map iteration
// is randomized, so sorting is the deterministic order the wire
// format needs.
func (s *serializer) emitStringMap(m map[string]any, depth int) error {
	s.next++

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.sb.WriteString("a:")
	s.sb.WriteString(strconv.Itoa(len(m)))
	s.sb.WriteString(":{")
	for _, k := range keys {
		s.emitString(k)
		if err := s.emit(m[k], depth+1); err != nil {
			return err
		}
	}
	s.sb.WriteString("}")
	return nil
}

func (s *serializer) emitReflectedMap(rv reflect.Value, depth int) error {
	s.next++

	type kv struct {
		sortKey string
		numKey  int64
		key     any
		value   any
	}
	// Integer-keyed maps order numerically, matching the ascending key
	// order a producer emits. Everything else orders by printed key.
	numeric := false
	switch rv.Type().Key().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		numeric = true
	}

	entries := make([]kv, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		e := kv{key: iter.Key().Interface(), value: iter.Value().Interface()}
		if numeric {
			if iter.Key().CanInt() {
				e.numKey = iter.Key().Int()
			} else {
				e.numKey = int64(iter.Key().Uint())
			}
		} else {
			e.sortKey = fmt.Sprint(e.key)
		}
		entries = append(entries, e)
	}
	if numeric {
		sort.Slice(entries, func(i, j int) bool { return entries[i].numKey < entries[j].numKey })
	} else {
		sort.Slice(entries, func(i, j int) bool { return entries[i].sortKey < entries[j].sortKey })
	}

	s.sb.WriteString("a:")
	s.sb.WriteString(strconv.Itoa(len(entries)))
	s.sb.WriteString(":{")
	for _, e := range entries {
		if err := s.emit(e.key, depth+1); err != nil {
			return err
		}
		if err := s.emit(e.value, depth+1); err != nil {
			return err
		}
	}
	s.sb.WriteString("}")
	return nil
}

// ============================================================
// Objects
// ============================================================

// emitStruct writes a fixed-field record as an object token. The
// class name is the lower-cased type name unless the value implements
// ClassNamer; field names come from the `php` struct tag, defaulting
// to the lower-cased Go field name. Fields tagged "-" are skipped.
func (s *serializer) emitStruct(rv reflect.Value, identity any, depth int) error {
	t := rv.Type()
	className := strings.ToLower(t.Name())
	if cn, ok := identityOrValue(rv, identity).(ClassNamer); ok {
		className = cn.PhpClass()
	}
	if className == "" {
		return &UnsupportedTypeError{GoType: t.String()}
	}

	type fieldKV struct {
		name  string
		value any
	}
	var fields []fieldKV
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name := strings.ToLower(f.Name)
		if tag, ok := f.Tag.Lookup("php"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		fields = append(fields, fieldKV{name: name, value: rv.Field(i).Interface()})
	}

	return s.emitObject(className, identity, len(fields), func() error {
		for _, f := range fields {
			s.emitString(f.name)
			if err := s.emit(f.value, depth+1); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *serializer) emitFieldLister(fl FieldLister, depth int) error {
	className := strings.ToLower(typeName(reflect.TypeOf(fl)))
	if cn, ok := fl.(ClassNamer); ok {
		className = cn.PhpClass()
	}
	if className == "" {
		return &UnsupportedTypeError{GoType: fmt.Sprintf("%T", fl)}
	}

	var identity any
	if reflect.TypeOf(fl).Kind() == reflect.Ptr {
		identity = fl
	}

	fields := fl.PhpFields()
	return s.emitObject(className, identity, len(fields), func() error {
		for _, f := range fields {
			s.emitString(f.Name)
			if err := s.emitValue(f.Value, depth+1); err != nil {
				return err
			}
		}
		return nil
	})
}

// emitObject performs the reference check and writes the object
// header before invoking body. The value index is assigned on entry,
// before any children are emitted, so nested back-references line up
// with the decoder's bookkeeping.
func (s *serializer) emitObject(className string, identity any, fieldCount int, body func() error) error {
	if identity != nil {
		if idx, ok := s.seen[identity]; ok {
			s.sb.WriteString("r:")
			s.sb.WriteString(strconv.Itoa(idx))
			s.sb.WriteString(";")
			return nil
		}
	}

	idx := s.next
	s.next++
	if identity != nil {
		s.seen[identity] = idx
	}

	s.sb.WriteString("O:")
	s.sb.WriteString(strconv.Itoa(len(className)))
	s.sb.WriteString(":\"")
	s.sb.WriteString(className)
	s.sb.WriteString("\":")
	s.sb.WriteString(strconv.Itoa(fieldCount))
	s.sb.WriteString(":{")
	if err := body(); err != nil {
		return err
	}
	s.sb.WriteString("}")
	return nil
}

// ============================================================
// Value re-emission
// ============================================================

// emitValue encodes a *Value, typically one produced by Unserialize,
// so decoded data re-encodes without conversion.
func (s *serializer) emitValue(v *Value, depth int) error {
	if depth > s.opts.MaxDepth {
		return &DepthError{Depth: s.opts.MaxDepth}
	}
	if v == nil {
		s.sb.WriteString("N;")
		return nil
	}

	switch v.typ {
	case TypeNull:
		s.sb.WriteString("N;")
	case TypeBool:
		s.emitBool(v.boolVal)
	case TypeInt:
		s.emitInt(v.intVal)
	case TypeFloat:
		s.emitFloat(v.floatVal)
	case TypeStr:
		s.emitString(v.strVal)

	case TypeList:
		if s.valueRef(v) {
			return nil
		}
		s.sb.WriteString("a:")
		s.sb.WriteString(strconv.Itoa(len(v.listVal)))
		s.sb.WriteString(":{")
		for i, elem := range v.listVal {
			s.emitInt(int64(i))
			if err := s.emitValue(elem, depth+1); err != nil {
				return err
			}
		}
		s.sb.WriteString("}")

	case TypeMap:
		if s.valueRef(v) {
			return nil
		}
		s.sb.WriteString("a:")
		s.sb.WriteString(strconv.Itoa(len(v.mapVal)))
		s.sb.WriteString(":{")
		for _, e := range v.mapVal {
			if err := s.emitValue(e.Key, depth+1); err != nil {
				return err
			}
			if err := s.emitValue(e.Value, depth+1); err != nil {
				return err
			}
		}
		s.sb.WriteString("}")

	case TypeObject:
		// The stored class name is the explicit override: it is
		// emitted exactly as decoded, no re-casing.
		return s.emitObject(v.objVal.ClassName, v.objVal, len(v.objVal.Fields), func() error {
			for _, f := range v.objVal.Fields {
				s.emitString(f.Name)
				if err := s.emitValue(f.Value, depth+1); err != nil {
					return err
				}
			}
			return nil
		})

	default:
		return &UnsupportedTypeError{GoType: "phpwire." + v.typ.String()}
	}
	return nil
}

// valueRef records a composite *Value in the back-reference table, or
// writes an r: token if it was already emitted. Reports whether a
// reference was written and the caller should stop.
func (s *serializer) valueRef(v *Value) bool {
	if idx, ok := s.seen[v]; ok {
		s.sb.WriteString("r:")
		s.sb.WriteString(strconv.Itoa(idx))
		s.sb.WriteString(";")
		return true
	}
	s.seen[v] = s.next
	s.next++
	return false
}

// typeName returns the element type name for pointers, the type name
// otherwise.
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// identityOrValue prefers the original interface value (which may be
// the pointer implementing ClassNamer) over the dereferenced struct.
func identityOrValue(rv reflect.Value, identity any) any {
	if identity != nil {
		return identity
	}
	if rv.CanInterface() {
		return rv.Interface()
	}
	return nil
}
