package phpwire

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// SerializeSession frames one or more named top-level values as
// name|value segments, the layout used by session stores. Accepted
// roots: map[string]any (sorted keys), a *Value map (wire order), or
// a list whose elements are all two-element (name, value) pairs.
// Each entry's value is encoded by an independent serialize pass, so
// back-reference indices restart per entry.
func SerializeSession(v any) (string, error) {
	return SerializeSessionWithOptions(v, DefaultSerializeOptions())
}

// SerializeSessionWithOptions frames a session with custom options.
func SerializeSessionWithOptions(v any, opts SerializeOptions) (string, error) {
	entries, err := sessionEntries(v)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, e := range entries {
		if strings.ContainsRune(e.name, '|') {
			return "", fmt.Errorf("%w: %q", ErrInvalidSessionKey, e.name)
		}
		encoded, err := SerializeWithOptions(e.value, opts)
		if err != nil {
			return "", err
		}
		sb.WriteString(e.name)
		sb.WriteByte('|')
		sb.WriteString(encoded)
	}
	return sb.String(), nil
}

type sessionEntry struct {
	name  string
	value any
}

// sessionEntries flattens a session root into ordered named entries.
func sessionEntries(v any) ([]sessionEntry, error) {
	switch root := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(root))
		for k := range root {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]sessionEntry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, sessionEntry{name: k, value: root[k]})
		}
		return entries, nil

	case *Value:
		switch root.Type() {
		case TypeMap:
			entries := make([]sessionEntry, 0, len(root.mapVal))
			for _, e := range root.mapVal {
				entries = append(entries, sessionEntry{name: keyString(e.Key), value: e.Value})
			}
			return entries, nil
		case TypeList:
			entries := make([]sessionEntry, 0, len(root.listVal))
			for _, elem := range root.listVal {
				pair, err := elem.AsList()
				if err != nil || len(pair) != 2 {
					return nil, ErrNotAssociative
				}
				entries = append(entries, sessionEntry{name: keyString(pair[0]), value: pair[1]})
			}
			return entries, nil
		default:
			return nil, ErrUnsupportedSessionRoot
		}
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.IsValid() && rv.Kind() == reflect.Map:
		// Any map the serializer accepts frames as a session too; keys
		// render through fmt.Sprint and sort for determinism.
		entries := make([]sessionEntry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, sessionEntry{
				name:  fmt.Sprint(iter.Key().Interface()),
				value: iter.Value().Interface(),
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
		return entries, nil

	case rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array):
		entries := make([]sessionEntry, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			k, val, ok := pairOf(rv.Index(i).Interface())
			if !ok {
				return nil, ErrNotAssociative
			}
			entries = append(entries, sessionEntry{name: fmt.Sprint(k), value: val})
		}
		return entries, nil
	}
	return nil, ErrUnsupportedSessionRoot
}
