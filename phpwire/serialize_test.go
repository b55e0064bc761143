package phpwire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialize_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, "N;"},
		{"true", true, "b:1;"},
		{"false", false, "b:0;"},
		{"int", 42, "i:42;"},
		{"negative int", int64(-123), "i:-123;"},
		{"uint", uint16(7), "i:7;"},
		{"float", 3.5, "d:3.5;"},
		{"string", "foo", `s:3:"foo";`},
		{"empty string", "", `s:0:"";`},
		{"bytes", []byte{0x01, 0x02}, "s:2:\"\x01\x02\";"},
		{"multibyte length is bytes", "héllo", `s:6:"héllo";`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Serialize(tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestSerialize_List(t *testing.T) {
	out, err := Serialize([]any{1, "two"})
	require.NoError(t, err)
	require.Equal(t, `a:2:{i:0;i:1;i:1;s:3:"two";}`, out)
}

func TestSerialize_TypedSlice(t *testing.T) {
	out, err := Serialize([]string{"x", "y"})
	require.NoError(t, err)
	require.Equal(t, `a:2:{i:0;s:1:"x";i:1;s:1:"y";}`, out)
}

func TestSerialize_MapSortsKeys(t *testing.T) {
	out, err := Serialize(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	require.Equal(t, `a:2:{s:1:"a";i:1;s:1:"b";i:2;}`, out)
}

func TestSerialize_IntKeyedMap(t *testing.T) {
	out, err := Serialize(map[int]string{2: "b", 1: "a"})
	require.NoError(t, err)
	require.Equal(t, `a:2:{i:1;s:1:"a";i:2;s:1:"b";}`, out)
}

func TestSerialize_IntKeyedMapOrdersNumerically(t *testing.T) {
	out, err := Serialize(map[int]string{10: "j", 2: "b"})
	require.NoError(t, err)
	require.Equal(t, `a:2:{i:2;s:1:"b";i:10;s:1:"j";}`, out)
}

func TestSerialize_Uint64Overflow(t *testing.T) {
	out, err := Serialize(uint64(math.MaxInt64))
	require.NoError(t, err)
	require.Equal(t, "i:9223372036854775807;", out)

	_, err = Serialize(uint64(math.MaxInt64) + 1)
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
}

func TestSerialize_AssocPairs(t *testing.T) {
	pairs := []any{
		[]any{"k1", 1},
		[]any{"k2", 2},
	}

	opts := DefaultSerializeOptions()
	opts.Assoc = true
	out, err := SerializeWithOptions(pairs, opts)
	require.NoError(t, err)
	require.Equal(t, `a:2:{s:2:"k1";i:1;s:2:"k2";i:2;}`, out)

	// Without Assoc the same value is a plain nested list.
	out, err = Serialize(pairs)
	require.NoError(t, err)
	require.Equal(t, `a:2:{i:0;a:2:{i:0;s:2:"k1";i:1;i:1;}i:1;a:2:{i:0;s:2:"k2";i:1;i:2;}}`, out)
}

func TestSerialize_AssocRejectsNonPair(t *testing.T) {
	opts := DefaultSerializeOptions()
	opts.Assoc = true
	_, err := SerializeWithOptions([]any{[]any{"k", 1}, "stray"}, opts)
	require.ErrorIs(t, err, ErrNotAssociative)
}

type account struct {
	Name    string `php:"name"`
	Balance int64  `php:"balance"`
	Secret  string `php:"-"`
	Active  bool
}

func TestSerialize_Struct(t *testing.T) {
	out, err := Serialize(account{Name: "bob", Balance: 12, Secret: "x", Active: true})
	require.NoError(t, err)
	require.Equal(t, `O:7:"account":3:{s:4:"name";s:3:"bob";s:7:"balance";i:12;s:6:"active";b:1;}`, out)
}

type ticket struct {
	ID int64 `php:"id"`
}

func (t *ticket) PhpClass() string { return "Ticket" }

func TestSerialize_ClassNamerOverride(t *testing.T) {
	out, err := Serialize(&ticket{ID: 9})
	require.NoError(t, err)
	require.Equal(t, `O:6:"Ticket":1:{s:2:"id";i:9;}`, out)
}

type pair struct {
	fields []Field
}

func (p *pair) PhpFields() []Field { return p.fields }
func (p *pair) PhpClass() string   { return "pair" }

func TestSerialize_FieldLister(t *testing.T) {
	p := &pair{fields: []Field{
		{Name: "x", Value: Int(1)},
		{Name: "y", Value: Int(2)},
	}}
	out, err := Serialize(p)
	require.NoError(t, err)
	require.Equal(t, `O:4:"pair":2:{s:1:"x";i:1;s:1:"y";i:2;}`, out)
}

func TestSerialize_SharedObjectEmitsReference(t *testing.T) {
	tk := &ticket{ID: 1}
	out, err := Serialize([]any{tk, tk})
	require.NoError(t, err)
	// Array is index 0, the object index 1; the second occurrence is
	// a back-reference, not a second body.
	require.Equal(t, `a:2:{i:0;O:6:"Ticket":1:{s:2:"id";i:1;}i:1;r:1;}`, out)
}

func TestSerialize_DistinctEqualObjectsNotShared(t *testing.T) {
	out, err := Serialize([]any{&ticket{ID: 1}, &ticket{ID: 1}})
	require.NoError(t, err)
	require.Equal(t, `a:2:{i:0;O:6:"Ticket":1:{s:2:"id";i:1;}i:1;O:6:"Ticket":1:{s:2:"id";i:1;}}`, out)
}

func TestSerialize_Value(t *testing.T) {
	v := NewMap(
		StrEntry("a", Int(1)),
		IntEntry(7, Str("x")),
	)
	out, err := Serialize(v)
	require.NoError(t, err)
	require.Equal(t, `a:2:{s:1:"a";i:1;i:7;s:1:"x";}`, out)
}

func TestSerialize_ValueObjectKeepsClassSpelling(t *testing.T) {
	v := NewObject("FooBar", Field{Name: "n", Value: Int(1)})
	out, err := Serialize(v)
	require.NoError(t, err)
	require.Equal(t, `O:6:"FooBar":1:{s:1:"n";i:1;}`, out)
}

func TestSerialize_UnsupportedType(t *testing.T) {
	_, err := Serialize(make(chan int))
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
	require.Equal(t, "chan int", ute.GoType)
}

func TestSerialize_DepthLimit(t *testing.T) {
	nested := []any{0}
	for i := 0; i < 6; i++ {
		nested = []any{nested}
	}

	opts := DefaultSerializeOptions()
	opts.MaxDepth = 3
	_, err := SerializeWithOptions(nested, opts)
	var de *DepthError
	require.ErrorAs(t, err, &de)
	require.Equal(t, 3, de.Depth)
}
