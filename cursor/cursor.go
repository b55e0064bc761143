// Package cursor provides a positioned reader over an in-memory byte
// buffer. It is the low-level collaborator of the phpwire deserializer:
// peek ahead, read exactly n bytes, read up to a delimiter, and report
// the current offset for error messages.
package cursor

import (
	"fmt"
	"io"
)

// Reader is a forward-only cursor over a byte buffer.
// The zero value reads from an empty buffer.
type Reader struct {
	buf []byte
	pos int
}

// New creates a Reader positioned at the start of buf.
// The buffer is not copied; the caller must not mutate it mid-read.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current byte offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// EOF reports whether the cursor is at the end of the buffer.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.buf)
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, bool) {
	if r.EOF() {
		return 0, false
	}
	return r.buf[r.pos], true
}

// Peek returns the next n bytes without consuming them.
// It returns false if fewer than n bytes remain.
func (r *Reader) Peek(n int) ([]byte, bool) {
	if r.Remaining() < n {
		return nil, false
	}
	return r.buf[r.pos : r.pos+n], true
}

// ReadByte consumes and returns one byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.EOF() {
		return 0, r.eof("read byte")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadN consumes exactly n bytes. The returned slice aliases the
// underlying buffer.
func (r *Reader) ReadN(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("cursor: negative read length %d at offset %d", n, r.pos)
	}
	if r.Remaining() < n {
		return nil, r.eof(fmt.Sprintf("read %d bytes", n))
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUntil consumes bytes up to and including delim, returning the
// content before it. Hitting the end of the buffer first is an error.
func (r *Reader) ReadUntil(delim byte) ([]byte, error) {
	for i := r.pos; i < len(r.buf); i++ {
		if r.buf[i] == delim {
			b := r.buf[r.pos:i]
			r.pos = i + 1
			return b, nil
		}
	}
	return nil, r.eof(fmt.Sprintf("read until %q", delim))
}

// Expect consumes one byte and checks that it equals b.
func (r *Reader) Expect(b byte) error {
	got, err := r.ReadByte()
	if err != nil {
		return err
	}
	if got != b {
		return fmt.Errorf("cursor: expected %q, got %q at offset %d", b, got, r.pos-1)
	}
	return nil
}

// MatchSessionName attempts to match a session frame name at the
// current position: a non-empty run of word characters immediately
// followed by '|'. On a match the name and the pipe are consumed and
// the name is returned; otherwise nothing is consumed.
func (r *Reader) MatchSessionName() (string, bool) {
	i := r.pos
	for i < len(r.buf) && isWordByte(r.buf[i]) {
		i++
	}
	if i == r.pos || i >= len(r.buf) || r.buf[i] != '|' {
		return "", false
	}
	name := string(r.buf[r.pos:i])
	r.pos = i + 1
	return name, true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

func (r *Reader) eof(op string) error {
	return fmt.Errorf("cursor: %s at offset %d: %w", op, r.pos, io.ErrUnexpectedEOF)
}
