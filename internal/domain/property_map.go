package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PropertyMap is an ordered mapping from property name to selected values.
// Iteration order is insertion order, and the JSON codec preserves document
// key order, because the variant display grouping depends on which property
// occupies the second slot. A plain map would shuffle that under us.
type PropertyMap struct {
	names  []string
	values map[string][]string
}

// NewPropertyMap returns an empty ordered property map.
func NewPropertyMap() PropertyMap {
	return PropertyMap{values: make(map[string][]string)}
}

// Set assigns values for a property name. A new name is appended to the
// iteration order; an existing name keeps its position.
func (m *PropertyMap) Set(name string, values ...string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = values
}

// Get returns the values selected for a property name.
func (m PropertyMap) Get(name string) []string {
	return m.values[name]
}

// First returns the first selected value for a property name, or "".
func (m PropertyMap) First(name string) string {
	if vs := m.values[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Has reports whether the property name is present.
func (m PropertyMap) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Contains reports whether value is among the values selected for name.
func (m PropertyMap) Contains(name, value string) bool {
	for _, v := range m.values[name] {
		if v == value {
			return true
		}
	}
	return false
}

// Names returns the property names in insertion order.
func (m PropertyMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of property names.
func (m PropertyMap) Len() int {
	return len(m.names)
}

// Clone returns a deep copy.
func (m PropertyMap) Clone() PropertyMap {
	c := NewPropertyMap()
	for _, name := range m.names {
		vs := make([]string, len(m.values[name]))
		copy(vs, m.values[name])
		c.Set(name, vs...)
	}
	return c
}

// Equal reports whether both maps hold the same names (in the same order)
// with the same values.
func (m PropertyMap) Equal(o PropertyMap) bool {
	if len(m.names) != len(o.names) {
		return false
	}
	for i, name := range m.names {
		if o.names[i] != name {
			return false
		}
		a, b := m.values[name], o.values[name]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m PropertyMap) MarshalJSON() ([]byte, error) {
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
		vals, err := json.Marshal(m.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(vals)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving its key order. Values may
// be a string array or a bare string (older documents stored single values
// unwrapped).
func (m *PropertyMap) UnmarshalJSON(data []byte) error {
	*m = NewPropertyMap()

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("property map: expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("property map: non-string key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var values []string
		if err := json.Unmarshal(raw, &values); err != nil {
			var single string
			if err := json.Unmarshal(raw, &single); err != nil {
				return fmt.Errorf("property map: values for %q are neither array nor string", key)
			}
			values = []string{single}
		}
		m.Set(key, values...)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
