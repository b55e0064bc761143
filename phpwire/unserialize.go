package phpwire

import (
	"math"
	"strconv"

	"github.com/veldt/phpwire/cursor"
)

// UnserializeOptions configures the deserializer.
type UnserializeOptions struct {
	// Assoc preserves every array as ordered (key, value) pairs
	// instead of collapsing sequential-key arrays to lists.
	Assoc bool

	// Classes resolves wire class names to constructible targets.
	// Nil means every object decodes to the generic record fallback.
	Classes *ClassMap

	// Charset is the declared text encoding of the input. Every
	// decoded string is tagged with it. Empty means UTF-8.
	Charset string

	// MaxDepth caps structural recursion (default DefaultMaxDepth).
	MaxDepth int
}

// DefaultUnserializeOptions returns the default options.
func DefaultUnserializeOptions() UnserializeOptions {
	return UnserializeOptions{MaxDepth: DefaultMaxDepth}
}

// Unserialize decodes wire-format text. Session input (one or more
// name|value frames) decodes to a map of frame name to value;
// anything else decodes as a single value. Trailing bytes after a
// complete value are ignored.
func Unserialize(data []byte) (*Value, error) {
	return UnserializeWithOptions(data, DefaultUnserializeOptions())
}

// UnserializeWithOptions decodes with custom options.
func UnserializeWithOptions(data []byte, opts UnserializeOptions) (*Value, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Charset != "" {
		// Fail on unknown charset labels up front, not mid-decode.
		if _, err := LookupCharset(opts.Charset); err != nil {
			return nil, err
		}
	}

	u := &unserializer{r: cursor.New(data), opts: opts}

	var frames []Entry
	for {
		name, ok := u.r.MatchSessionName()
		if !ok {
			break
		}
		// Each session frame was encoded by an independent serialize
		// call, so the back-reference index table restarts per frame.
		u.vals = u.vals[:0]
		v, err := u.value(0)
		if err != nil {
			return nil, err
		}
		frames = append(frames, StrEntry(name, v))
	}
	if len(frames) > 0 {
		return NewMap(frames...), nil
	}
	return u.value(0)
}

// IsSession reports whether data starts with a session frame.
func IsSession(data []byte) bool {
	_, ok := cursor.New(data).MatchSessionName()
	return ok
}

// unserializer holds per-call decode state: the cursor and the
// index table of composites produced so far.
type unserializer struct {
	r    *cursor.Reader
	opts UnserializeOptions
	vals []*Value // composite value index -> value
}

// value decodes exactly one value at the cursor position.
func (u *unserializer) value(depth int) (*Value, error) {
	if depth > u.opts.MaxDepth {
		return nil, &DepthError{Depth: u.opts.MaxDepth}
	}

	start := u.r.Pos()
	prefix, err := u.r.ReadN(2)
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "reading type prefix", Err: err}
	}
	tag := prefix[0]

	switch tag {
	case 'N', 'a', 'O', 's', 'i', 'd', 'b', 'R', 'r':
	default:
		return nil, &UnknownTypeError{Tag: tag, Offset: start}
	}

	if tag == 'N' {
		if prefix[1] != ';' {
			return nil, &SyntaxError{Offset: start, Msg: "malformed null token"}
		}
		return Null(), nil
	}
	if prefix[1] != ':' {
		return nil, &SyntaxError{Offset: start, Msg: "expected ':' after type tag"}
	}

	switch tag {
	case 'b':
		return u.boolean(start)
	case 'i':
		return u.integer(start)
	case 'd':
		return u.float(start)
	case 's':
		return u.str(start)
	case 'a':
		return u.array(start, depth)
	case 'O':
		return u.object(start, depth)
	default: // 'R', 'r'
		return u.reference(start)
	}
}

// ============================================================
// Scalars
// ============================================================

func (u *unserializer) boolean(start int) (*Value, error) {
	c, err := u.r.ReadByte()
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "reading bool", Err: err}
	}
	if c != '0' && c != '1' {
		return nil, &SyntaxError{Offset: start, Msg: "bool must be 0 or 1"}
	}
	if err := u.expect(';'); err != nil {
		return nil, err
	}
	return Bool(c == '1'), nil
}

func (u *unserializer) integer(start int) (*Value, error) {
	raw, err := u.r.ReadUntil(';')
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "reading int", Err: err}
	}
	i, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "invalid int " + strconv.Quote(string(raw))}
	}
	return Int(i), nil
}

func (u *unserializer) float(start int) (*Value, error) {
	raw, err := u.r.ReadUntil(';')
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "reading float", Err: err}
	}
	switch string(raw) {
	case "NAN":
		return Float(math.NaN()), nil
	case "INF":
		return Float(math.Inf(1)), nil
	case "-INF":
		return Float(math.Inf(-1)), nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "invalid float " + strconv.Quote(string(raw))}
	}
	return Float(f), nil
}

func (u *unserializer) str(start int) (*Value, error) {
	n, err := u.length(start)
	if err != nil {
		return nil, err
	}
	if err := u.expect('"'); err != nil {
		return nil, err
	}
	raw, err := u.r.ReadN(n)
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "reading string payload", Err: err}
	}
	if err := u.expect('"'); err != nil {
		return nil, err
	}
	if err := u.expect(';'); err != nil {
		return nil, err
	}
	return StrCharset(string(raw), u.opts.Charset), nil
}

// ============================================================
// Composites
// ============================================================

func (u *unserializer) array(start, depth int) (*Value, error) {
	count, err := u.length(start)
	if err != nil {
		return nil, err
	}
	if err := u.expect('{'); err != nil {
		return nil, err
	}

	// Reserve this array's value index before decoding children so
	// self- and sibling-references resolve.
	v := &Value{typ: TypeMap}
	u.vals = append(u.vals, v)

	entries := make([]Entry, 0, min(count, 1024))
	for i := 0; i < count; i++ {
		key, err := u.value(depth + 1)
		if err != nil {
			return nil, err
		}
		val, err := u.value(depth + 1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Value: val})
	}
	if err := u.expect('}'); err != nil {
		return nil, err
	}

	if !u.opts.Assoc && sequentialKeys(entries) {
		v.typ = TypeList
		v.listVal = make([]*Value, len(entries))
		for i, e := range entries {
			v.listVal[i] = e.Value
		}
		return v, nil
	}
	v.mapVal = entries
	return v, nil
}

func (u *unserializer) object(start, depth int) (*Value, error) {
	nameLen, err := u.length(start)
	if err != nil {
		return nil, err
	}
	if err := u.expect('"'); err != nil {
		return nil, err
	}
	name, err := u.r.ReadN(nameLen)
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "reading class name", Err: err}
	}
	if err := u.expect('"'); err != nil {
		return nil, err
	}
	if err := u.expect(':'); err != nil {
		return nil, err
	}
	fieldCount, err := u.length(start)
	if err != nil {
		return nil, err
	}
	if err := u.expect('{'); err != nil {
		return nil, err
	}

	// The original spelling is kept for the fallback record and for
	// re-encoding; only the ClassMap lookup normalizes it.
	obj := &ObjectValue{ClassName: string(name)}
	v := &Value{typ: TypeObject, objVal: obj}
	u.vals = append(u.vals, v)

	if ctor, ok := u.opts.Classes.Lookup(obj.ClassName); ok {
		obj.Instance = ctor()
	}

	for i := 0; i < fieldCount; i++ {
		nameVal, err := u.value(depth + 1)
		if err != nil {
			return nil, err
		}
		fname, ok := fieldName(nameVal)
		if !ok {
			return nil, &SyntaxError{Offset: start, Msg: "field name must be a string or int"}
		}
		fval, err := u.value(depth + 1)
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, Field{Name: fname, Value: fval})
		if obj.Instance != nil {
			if err := assignField(obj.Instance, obj.ClassName, fname, fval); err != nil {
				return nil, err
			}
		}
	}
	if err := u.expect('}'); err != nil {
		return nil, err
	}
	return v, nil
}

func (u *unserializer) reference(start int) (*Value, error) {
	raw, err := u.r.ReadUntil(';')
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "reading reference", Err: err}
	}
	idx, err := strconv.Atoi(string(raw))
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: "invalid reference index " + strconv.Quote(string(raw))}
	}
	if idx < 0 || idx >= len(u.vals) {
		return nil, &InvalidReferenceError{Index: idx, Produced: len(u.vals), Offset: start}
	}
	// Identity-shared, not copied.
	return u.vals[idx], nil
}

// ============================================================
// Framing helpers
// ============================================================

// length reads a decimal count or byte length terminated by ':'.
func (u *unserializer) length(start int) (int, error) {
	raw, err := u.r.ReadUntil(':')
	if err != nil {
		return 0, &SyntaxError{Offset: start, Msg: "reading length", Err: err}
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0, &SyntaxError{Offset: start, Msg: "invalid length " + strconv.Quote(string(raw))}
	}
	return n, nil
}

func (u *unserializer) expect(b byte) error {
	pos := u.r.Pos()
	if err := u.r.Expect(b); err != nil {
		return &SyntaxError{Offset: pos, Msg: "unexpected byte", Err: err}
	}
	return nil
}

// sequentialKeys reports whether entries carry exactly the integer
// keys 0..n-1 in that order.
func sequentialKeys(entries []Entry) bool {
	for i, e := range entries {
		if e.Key.Type() != TypeInt || e.Key.intVal != int64(i) {
			return false
		}
	}
	return true
}

// fieldName renders a decoded field-name value. The wire allows both
// string and integer field names.
func fieldName(v *Value) (string, bool) {
	switch v.Type() {
	case TypeStr:
		return v.strVal, true
	case TypeInt:
		return strconv.FormatInt(v.intVal, 10), true
	default:
		return "", false
	}
}
