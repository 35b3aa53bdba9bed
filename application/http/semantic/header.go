package semantic

import (
	"slices"
	"sort"
	"strings"

	"http-message/application/util/rule"

	"github.com/pkg/errors"
)

// Field is a header field name with all of its values.
type Field struct {
	Name   string
	Values []string
}

// Headers is an ordered, case-insensitive multimap of header fields.
// Each field keeps the name it was registered with (its canonical name),
// while lookups go through the lowercased name.
//
// The zero value is an empty, ready to use Headers.
// Headers is not safe for concurrent mutation; [Response] never mutates a
// Headers it has handed out.
type Headers struct {
	fields []Field
	index  map[string]int // normalized name -> position in fields
}

// NewHeaders creates headers from fields in the given order.
// Fields whose names only differ in case are merged into the first one,
// appending their values.
func NewHeaders(fields ...Field) (Headers, error) {
	var h Headers
	for _, f := range fields {
		if err := h.Add(f.Name, f.Values...); err != nil {
			return Headers{}, err
		}
	}
	return h, nil
}

// FieldsFromMap converts a map into fields.
// Go maps have no order, so the fields are sorted by name.
func FieldsFromMap(m map[string][]string) []Field {
	fields := make([]Field, 0, len(m))
	for name, values := range m {
		fields = append(fields, Field{Name: name, Values: slices.Clone(values)})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// Clone returns a deep copy of h. The copy shares nothing with h.
func (h *Headers) Clone() Headers {
	clone := Headers{
		fields: make([]Field, len(h.fields)),
		index:  make(map[string]int, len(h.index)),
	}
	for i, f := range h.fields {
		clone.fields[i] = Field{Name: f.Name, Values: slices.Clone(f.Values)}
	}
	for k, v := range h.index {
		clone.index[k] = v
	}
	return clone
}

// Fields returns a copy of all the fields, in registration order.
func (h *Headers) Fields() []Field {
	clone := h.Clone()
	return clone.fields
}

// Map returns a copy of all the fields keyed by canonical name.
func (h *Headers) Map() map[string][]string {
	m := make(map[string][]string, len(h.fields))
	for _, f := range h.fields {
		m[f.Name] = slices.Clone(f.Values)
	}
	return m
}

func (h *Headers) Len() int { return len(h.fields) }

func (h *Headers) Has(name string) bool {
	_, ok := h.index[normalize(name)]
	return ok
}

// Values returns a copy of the values of name.
// If name is absent, values is an empty, non-nil slice.
func (h *Headers) Values(name string) (values []string, ok bool) {
	pos, ok := h.index[normalize(name)]
	if !ok {
		return []string{}, false
	}

	values = slices.Clone(h.fields[pos].Values)
	if values == nil {
		values = []string{}
	}
	return values, true
}

// Line returns the values of name as a single comma-separated line.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.3
func (h *Headers) Line(name string) string {
	values, _ := h.Values(name)
	return strings.Join(values, ", ")
}

// Set replaces every value of name.
// An existing field is dropped and name is registered again as given,
// so the latest spelling becomes the canonical name.
func (h *Headers) Set(name string, values ...string) error {
	values, err := normalizeField(name, values)
	if err != nil {
		return err
	}

	h.Del(name)
	h.insert(name, values)
	return nil
}

// Add appends values to name, registering it if it is absent.
// The canonical name of an existing field is kept.
func (h *Headers) Add(name string, values ...string) error {
	values, err := normalizeField(name, values)
	if err != nil {
		return err
	}

	if pos, ok := h.index[normalize(name)]; ok {
		h.fields[pos].Values = append(h.fields[pos].Values, values...)
		return nil
	}

	h.insert(name, values)
	return nil
}

// Del removes name and reports whether it was present.
func (h *Headers) Del(name string) bool {
	key := normalize(name)
	pos, ok := h.index[key]
	if !ok {
		return false
	}

	h.fields = slices.Delete(h.fields, pos, pos+1)
	delete(h.index, key)
	for i := pos; i < len(h.fields); i++ {
		h.index[normalize(h.fields[i].Name)] = i
	}
	return true
}

func (h *Headers) insert(name string, values []string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	h.index[normalize(name)] = len(h.fields)
	h.fields = append(h.fields, Field{Name: name, Values: values})
}

func normalize(name string) string { return strings.ToLower(name) }

// normalizeField validates a field and returns its values with OWS trimmed.
// The returned slice never aliases values.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5-1
func normalizeField(name string, values []string) ([]string, error) {
	if !rule.IsValidToken(name) {
		return nil, errors.Wrapf(ErrInvalidArgument, "header name %q is not a valid token", name)
	}

	trimmed := make([]string, len(values))
	for i, v := range values {
		v = rule.TrimOWS(v)
		if !rule.IsValidFieldValue(v) {
			return nil, errors.Wrapf(ErrInvalidArgument, "header %q has invalid value %q", name, v)
		}
		trimmed[i] = v
	}
	return trimmed, nil
}
