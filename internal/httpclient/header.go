package httpclient

import "strings"

// Field is a single header name/value pair.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered header collection. Lookups are case-insensitive,
// wire output preserves insertion order, and duplicate names are kept as
// separate fields.
type Header struct {
	fields []Field
}

// Add appends a field, keeping any existing fields with the same name.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Set replaces every field named name with a single field. The replacement
// keeps the position of the first occurrence, or appends if absent.
func (h *Header) Set(name, value string) {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].Name, name) {
			h.fields[i].Value = value
			h.removeAfter(name, i)
			return
		}
	}
	h.Add(name, value)
}

// Del removes every field named name.
func (h *Header) Del(name string) {
	h.removeAfter(name, -1)
}

func (h *Header) removeAfter(name string, keep int) {
	kept := h.fields[:0]
	for i, f := range h.fields {
		if i != keep && strings.EqualFold(f.Name, name) {
			continue
		}
		kept = append(kept, f)
	}
	h.fields = kept
}

// Get returns the value of the first field named name, or "".
func (h *Header) Get(name string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Has reports whether at least one field named name exists.
func (h *Header) Has(name string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Values returns every value for name in insertion order.
func (h *Header) Values(name string) []string {
	var values []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Fields returns the fields in insertion order. The slice is shared;
// callers must not mutate it.
func (h *Header) Fields() []Field {
	return h.fields
}

// Len returns the number of fields, counting duplicates.
func (h *Header) Len() int {
	return len(h.fields)
}

// Clone returns an independent copy.
func (h *Header) Clone() Header {
	return Header{fields: append([]Field(nil), h.fields...)}
}
