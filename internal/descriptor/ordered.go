package descriptor

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// orderedMap is a JSON object that remembers key insertion order.
//
// Unmarshaling captures keys and raw values via the token stream; the typed
// values are materialized in a second pass so the parse mode can be honored
// (encoding/json offers no way to plumb options through UnmarshalJSON).
// Marshaling emits keys in insertion order; json.MarshalIndent re-indents the
// compact output afterwards.
type orderedMap[V any] struct {
	names []string
	items map[string]*V
	raw   map[string]json.RawMessage
}

// Names returns the keys in insertion order. The returned slice is shared;
// callers must not mutate it.
func (m *orderedMap[V]) Names() []string {
	if m == nil {
		return nil
	}
	return m.names
}

// Get returns the value for name, or nil if absent.
func (m *orderedMap[V]) Get(name string) *V {
	if m == nil {
		return nil
	}
	return m.items[name]
}

// Has reports whether name is present.
func (m *orderedMap[V]) Has(name string) bool {
	return m.Get(name) != nil
}

// Len returns the number of entries.
func (m *orderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Set inserts or replaces the value for name. New names append to the
// insertion order.
func (m *orderedMap[V]) Set(name string, v *V) {
	if m.items == nil {
		m.items = make(map[string]*V)
	}
	if _, ok := m.items[name]; !ok {
		m.names = append(m.names, name)
	}
	m.items[name] = v
}

// Delete removes name, preserving the relative order of the rest.
func (m *orderedMap[V]) Delete(name string) {
	if m == nil || m.items == nil {
		return
	}
	if _, ok := m.items[name]; !ok {
		return
	}
	delete(m.items, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
}

func (m *orderedMap[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "reading object start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Newf("expected JSON object, got %v", tok)
	}

	m.names = nil
	m.items = make(map[string]*V)
	m.raw = make(map[string]json.RawMessage)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "reading object key")
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return errors.Wrapf(err, "reading value for %q", key)
		}

		if _, dup := m.raw[key]; !dup {
			m.names = append(m.names, key)
		}
		m.raw[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "reading object end")
	}
	return nil
}

func (m *orderedMap[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(m.items[name])
		if err != nil {
			return nil, errors.Wrapf(err, "marshaling %q", name)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// materialize decodes the raw values captured during UnmarshalJSON into typed
// entries, honoring the parse mode. It is a no-op for maps built with Set.
func (m *orderedMap[V]) materialize(mode Mode) error {
	for _, name := range m.names {
		raw, ok := m.raw[name]
		if !ok {
			continue
		}
		v := new(V)
		if err := decodeJSON(raw, v, mode); err != nil {
			return errors.Wrapf(err, "entry %q", name)
		}
		m.items[name] = v
	}
	m.raw = nil
	return nil
}

// decodeJSON decodes data into v, rejecting unknown fields in strict mode.
func decodeJSON(data []byte, v any, mode Mode) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if mode == ModeStrict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}
