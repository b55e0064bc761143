package phpwire

import (
	"sort"
	"strings"
)

// ClassMap registers constructible targets for object decoding. Wire
// class names are normalized with NormalizeClassName before lookup,
// matching the historical behavior of the format's producers: a class
// name with non-standard casing may fail to resolve and will fall
// back to a generic record. The zero value is an empty, usable map.
type ClassMap struct {
	ctors map[string]func() any
}

// NewClassMap creates an empty class map.
func NewClassMap() *ClassMap {
	return &ClassMap{}
}

// Register adds a constructor under the given class name. The name is
// stored as registered; lookups normalize the wire spelling, so
// register names in capitalized form ("Foo", not "foo" or "FOO").
func (m *ClassMap) Register(name string, ctor func() any) *ClassMap {
	if m.ctors == nil {
		m.ctors = make(map[string]func() any)
	}
	m.ctors[name] = ctor
	return m
}

// Lookup resolves a wire class name to a registered constructor.
func (m *ClassMap) Lookup(wireName string) (func() any, bool) {
	if m == nil || m.ctors == nil {
		return nil, false
	}
	ctor, ok := m.ctors[NormalizeClassName(wireName)]
	return ctor, ok
}

// Names returns the registered class names, sorted.
func (m *ClassMap) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.ctors))
	for name := range m.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeClassName capitalizes a wire class name for ClassMap
// lookup: first byte upper-cased, the rest lower-cased. Lossy for
// names like "XMLReader", but preserved for wire compatibility.
func NormalizeClassName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}
