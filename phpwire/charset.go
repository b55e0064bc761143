package phpwire

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultCharset is assumed for strings without a declared encoding.
const DefaultCharset = "UTF-8"

// LookupCharset resolves a charset label ("UTF-8", "ISO-8859-1",
// "windows-1252", ...) to its encoding. Labels are matched the way
// web content declares them.
func LookupCharset(name string) (encoding.Encoding, error) {
	if name == "" || name == DefaultCharset {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("phpwire: unknown charset %q: %w", name, err)
	}
	return enc, nil
}

// StrUTF8 returns the string payload transcoded from its declared
// charset to UTF-8. Untagged and UTF-8-tagged strings are returned
// as-is.
func (v *Value) StrUTF8() (string, error) {
	raw, err := v.AsStr()
	if err != nil {
		return "", err
	}
	if v.charset == "" || v.charset == DefaultCharset {
		return raw, nil
	}
	enc, err := LookupCharset(v.charset)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().String(raw)
	if err != nil {
		return "", fmt.Errorf("phpwire: transcoding from %s: %w", v.charset, err)
	}
	return out, nil
}
