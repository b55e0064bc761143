package phpwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeSession_Map(t *testing.T) {
	out, err := SerializeSession(map[string]any{
		"user":  "a",
		"count": 1,
	})
	require.NoError(t, err)
	require.Equal(t, `count|i:1;user|s:1:"a";`, out)
}

func TestSerializeSession_ValueMapKeepsOrder(t *testing.T) {
	root := NewMap(
		StrEntry("z", Int(1)),
		StrEntry("a", Int(2)),
	)
	out, err := SerializeSession(root)
	require.NoError(t, err)
	require.Equal(t, `z|i:1;a|i:2;`, out)
}

func TestSerializeSession_TypedMapRoots(t *testing.T) {
	// Any map the serializer accepts frames as a session.
	out, err := SerializeSession(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	require.Equal(t, `a|i:1;b|i:2;`, out)

	out, err = SerializeSession(map[any]any{"z": "x", "a": true})
	require.NoError(t, err)
	require.Equal(t, `a|b:1;z|s:1:"x";`, out)
}

func TestSerializeSession_PairList(t *testing.T) {
	out, err := SerializeSession([]any{
		[]any{"user", "a"},
		[]any{"count", 1},
	})
	require.NoError(t, err)
	require.Equal(t, `user|s:1:"a";count|i:1;`, out)
}

func TestSerializeSession_InvalidKey(t *testing.T) {
	_, err := SerializeSession(map[string]any{"bad|key": 1})
	require.ErrorIs(t, err, ErrInvalidSessionKey)
}

func TestSerializeSession_NotAssociative(t *testing.T) {
	_, err := SerializeSession([]any{"lone value"})
	require.ErrorIs(t, err, ErrNotAssociative)

	_, err = SerializeSession(NewList(Int(1)))
	require.ErrorIs(t, err, ErrNotAssociative)
}

func TestSerializeSession_UnsupportedRoot(t *testing.T) {
	tests := []struct {
		name string
		root any
	}{
		{"scalar", 42},
		{"string", "x"},
		{"nil", nil},
		{"value scalar", Int(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SerializeSession(tt.root)
			require.ErrorIs(t, err, ErrUnsupportedSessionRoot)
		})
	}
}

func TestSerializeSession_IndicesRestartPerEntry(t *testing.T) {
	a := &ticket{ID: 1}
	b := &ticket{ID: 2}
	out, err := SerializeSession([]any{
		[]any{"a", a},
		[]any{"b", b},
	})
	require.NoError(t, err)
	// Both objects are index 0 of their own frame: no cross-frame
	// references ever appear.
	require.Equal(t, `a|O:6:"Ticket":1:{s:2:"id";i:1;}b|O:6:"Ticket":1:{s:2:"id";i:2;}`, out)
}
