package cursor

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReader_ReadN(t *testing.T) {
	r := New([]byte("hello"))

	b, err := r.ReadN(3)
	require.NoError(t, err)
	require.Equal(t, "hel", string(b))
	require.Equal(t, 3, r.Pos())
	require.Equal(t, 2, r.Remaining())

	_, err = r.ReadN(3)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	// A failed read consumes nothing.
	require.Equal(t, 3, r.Pos())
}

func TestReader_ReadUntil(t *testing.T) {
	r := New([]byte("123:rest"))

	b, err := r.ReadUntil(':')
	require.NoError(t, err)
	require.Equal(t, "123", string(b))
	require.Equal(t, 4, r.Pos()) // delimiter consumed

	_, err = r.ReadUntil(':')
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_PeekDoesNotConsume(t *testing.T) {
	r := New([]byte("ab"))

	b, ok := r.Peek(2)
	require.True(t, ok)
	require.Equal(t, "ab", string(b))
	require.Equal(t, 0, r.Pos())

	_, ok = r.Peek(3)
	require.False(t, ok)

	c, ok := r.PeekByte()
	require.True(t, ok)
	require.Equal(t, byte('a'), c)
}

func TestReader_Expect(t *testing.T) {
	r := New([]byte("a:"))
	require.NoError(t, r.Expect('a'))
	require.Error(t, r.Expect(';'))
}

func TestReader_MatchSessionName(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		matched bool
		pos     int
	}{
		{"user|s:1:", "user", true, 5},
		{"a_b9|N;", "a_b9", true, 5},
		{"i:42;", "", false, 0},     // ':' ends the word run before any '|'
		{"|value", "", false, 0},    // empty name
		{"noframe", "", false, 0},   // no pipe at all
		{"s:3:\"a|b\";", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := New([]byte(tt.input))
			name, ok := r.MatchSessionName()
			require.Equal(t, tt.matched, ok)
			require.Equal(t, tt.name, name)
			require.Equal(t, tt.pos, r.Pos())
		})
	}
}

func TestReader_ZeroValue(t *testing.T) {
	var r Reader
	require.True(t, r.EOF())
	_, err := r.ReadByte()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
