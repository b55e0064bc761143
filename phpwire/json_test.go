package phpwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"b":2,"a":[1,2.5,"x",true,null]}`))
	require.NoError(t, err)

	// Keys are sorted: Go's JSON decoder loses source order.
	require.Equal(t, NewMap(
		StrEntry("a", NewList(Int(1), Float(2.5), Str("x"), Bool(true), Null())),
		StrEntry("b", Int(2)),
	), v)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`{broken`))
	require.Error(t, err)
}

func TestToJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    *Value
		expected string
	}{
		{"null", Null(), "null"},
		{"bool", Bool(true), "true"},
		{"int", Int(-7), "-7"},
		{"float", Float(2.5), "2.5"},
		{"string", Str("hi"), `"hi"`},
		{"list", NewList(Int(1), Int(2)), "[1,2]"},
		{"map keeps order", NewMap(StrEntry("z", Int(1)), StrEntry("a", Int(2))), `{"z":1,"a":2}`},
		{"int keys become strings", NewMap(IntEntry(3, Str("x"))), `{"3":"x"}`},
		{
			"object",
			NewObject("Foo", Field{Name: "bar", Value: Int(5)}),
			`{"__class":"Foo","bar":5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.value.ToJSON()
			require.NoError(t, err)
			require.Equal(t, tt.expected, string(out))
		})
	}
}

func TestToJSON_TranscodesTaggedStrings(t *testing.T) {
	v := StrCharset("\xe9", "ISO-8859-1")
	out, err := v.ToJSON()
	require.NoError(t, err)
	require.Equal(t, `"é"`, string(out))
}

func TestToJSON_RejectsCycles(t *testing.T) {
	v, err := Unserialize([]byte(`a:1:{i:0;R:0;}`))
	require.NoError(t, err)
	_, err = v.ToJSON()
	require.ErrorIs(t, err, ErrCyclicValue)
}

func TestToJSON_SharedAcyclicValue(t *testing.T) {
	// The same inner array referenced twice is not a cycle: both
	// occurrences render in full.
	v, err := Unserialize([]byte(`a:2:{i:0;a:1:{i:0;i:1;}i:1;r:1;}`))
	require.NoError(t, err)
	out, err := v.ToJSON()
	require.NoError(t, err)
	require.Equal(t, `[[1],[1]]`, string(out))
}

func TestToJSON_RejectsNonFinite(t *testing.T) {
	wire := `d:NAN;`
	v, err := Unserialize([]byte(wire))
	require.NoError(t, err)
	_, err = v.ToJSON()
	require.Error(t, err)
}

func TestJSON_WireBridge(t *testing.T) {
	// JSON in, wire out, wire back to a value: the CLI encode path.
	v, err := FromJSON([]byte(`{"name":"ada","tags":["x","y"]}`))
	require.NoError(t, err)

	wire, err := Serialize(v)
	require.NoError(t, err)
	require.Equal(t, `a:2:{s:4:"name";s:3:"ada";s:4:"tags";a:2:{i:0;s:1:"x";i:1;s:1:"y";}}`, wire)

	back, err := Unserialize([]byte(wire))
	require.NoError(t, err)
	require.Equal(t, v, back)
}
