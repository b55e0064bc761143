// Package phpwire implements a bidirectional codec for the PHP
// serialization wire format: a compact, self-describing,
// length-prefixed text encoding for scalars, ordered associative
// arrays, objects, and back-references.
//
// # Wire Format
//
// Array:   a:<count>:{<key><value>...}
// Object:  O:<len>:"<class>":<count>:{<name><value>...}
// String:  s:<bytelen>:"<raw bytes>";
// Int:     i:<digits>;
// Float:   d:<number>;
// Null:    N;
// Bool:    b:0; or b:1;
// Ref:     R:<index>; or r:<index>;
// Session: <name>|<value> segments, concatenated
//
// Lengths are byte counts, so multibyte text survives unchanged.
//
// # Data Model
//
// Scalars: null, bool, int, float, str (with a charset tag)
// Containers: list (sequential keys), map (ordered pairs), object
//
// Decoding returns a *Value tagged union rather than Go maps so that
// key order and duplicate keys survive exactly as they appear on the
// wire. An array whose keys are exactly 0..n-1 in order collapses to
// a list; anything else stays an ordered map. The Assoc option
// disables collapsing and preserves every array as ordered pairs.
//
// # Back-References
//
// Every composite value is assigned a sequential index in traversal
// order on both the encode and decode paths. Encoding the same object
// (by pointer identity) twice emits r:<index>; instead of a second
// body, and decoding resolves R/r tokens to the already-built value,
// so shared and cyclic structures round-trip with identity intact.
//
// # Sessions
//
// SerializeSession frames one or more named top-level values as
// name|value segments. Unserialize detects session input
// automatically and returns a map of name to decoded value.
//
// # Objects
//
// Decoded objects resolve their class through an explicit ClassMap
// registry; unregistered classes fall back to a generic record that
// keeps the original class name and its fields in wire order.
// Searching the ambient type system for a constructor, as the PHP
// runtime would, is deliberately unsupported: register classes up
// front.
package phpwire
