package domain

import "strings"

// Metadata is an ordered mapping of string keys to string values.
// Keys keep the order in which they were first set.
// The zero value is an empty mapping ready to use.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata creates metadata from alternating key, value pairs.
// A trailing key without a value is ignored.
func NewMetadata(pairs ...string) Metadata {
	var md Metadata
	for i := 0; i+1 < len(pairs); i += 2 {
		md.Set(pairs[i], pairs[i+1])
	}
	return md
}

// Set stores value under key. Re-setting a key keeps its original position.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Lookup returns the value of the first key present, in argument order.
func (m Metadata) Lookup(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			return v, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key if present.
func (m *Metadata) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m Metadata) Len() int {
	return len(m.keys)
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	out := Metadata{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]string, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Map returns the metadata as an unordered map.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.values[k]
	}
	return out
}

// KeySeparator replaces the structural "." separator in stored keys.
const KeySeparator = "-"

// SafeKey rewrites key so it contains no "." separator, which the
// record store reserves for nested lookups.
func SafeKey(key string) string {
	return strings.ReplaceAll(key, ".", KeySeparator)
}
