// Package domain contains core concepts of subpub.
// This file defines the message schema and the Message built against it.
// The schema is closed: a Message only ever holds the declared fields.
package domain

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"subpub/errors"
	"time"
)

// Field names one slot of a Message.
type Field string

const (
	FieldTimestamp  Field = "timestamp"
	FieldType       Field = "type"
	FieldWeight     Field = "weight"
	FieldName       Field = "name"
	FieldBody       Field = "body"
	FieldLocation   Field = "location"
	FieldTags       Field = "tags"
	FieldAttributes Field = "attributes"
)

// FieldSpec describes one declared field.
// Default is invoked once per construction when no value is supplied,
// so every Message gets its own value.
type FieldSpec struct {
	Field    Field
	Mutable  bool
	Required bool
	Default  func() any
}

// Fields is a partial set of values keyed by field name.
type Fields map[Field]any

// MessageSpec is the message shape, in declaration order.
// It is never modified after package initialization.
var MessageSpec = []FieldSpec{
	{Field: FieldTimestamp, Default: func() any { return time.Now() }},
	{Field: FieldType, Required: true},
	{Field: FieldWeight, Mutable: true, Default: func() any { return 0 }},
	{Field: FieldName, Required: true},
	{Field: FieldBody, Required: true},
	{Field: FieldLocation, Required: true},
	{Field: FieldTags, Mutable: true, Default: func() any { return []string{} }},
	{Field: FieldAttributes, Mutable: true, Default: func() any { return map[string]any{} }},
}

var specIndex = func() map[Field]int {
	index := make(map[Field]int, len(MessageSpec))
	for i, spec := range MessageSpec {
		index[spec.Field] = i
	}
	return index
}()

// Lookup returns the spec of a declared field.
func Lookup(field Field) (FieldSpec, bool) {
	i, ok := specIndex[field]
	if !ok {
		return FieldSpec{}, false
	}
	return MessageSpec[i], true
}

// FieldNames returns the declared fields in declaration order.
func FieldNames() []Field {
	names := make([]Field, 0, len(MessageSpec))
	for _, spec := range MessageSpec {
		names = append(names, spec.Field)
	}
	return names
}

// Message holds the current values of the declared fields.
// Non-mutable fields never change once the Message is built.
// A Message is not safe for concurrent mutation.
type Message struct {
	values Fields
}

// NewMessage builds a Message from the supplied values.
// Missing values are taken from the field default, and a required field
// without value nor default fails the construction.
func NewMessage(values Fields) (*Message, error) {
	unknown := make([]string, 0)
	for field := range values {
		if _, ok := specIndex[field]; !ok {
			unknown = append(unknown, string(field))
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, errors.UnknownFieldError(unknown[0])
	}

	resolved := make(Fields, len(MessageSpec))
	for _, spec := range MessageSpec {
		if value, ok := values[spec.Field]; ok {
			resolved[spec.Field] = value
			continue
		}
		if spec.Default != nil {
			resolved[spec.Field] = spec.Default()
			continue
		}
		if spec.Required {
			return nil, errors.MissingRequiredFieldError(string(spec.Field))
		}
	}
	return &Message{values: resolved}, nil
}

// Get returns the value of a field, if set.
func (m *Message) Get(field Field) (any, bool) {
	value, ok := m.values[field]
	return value, ok
}

// Set changes the value of a mutable field.
func (m *Message) Set(field Field, value any) error {
	spec, ok := Lookup(field)
	if !ok {
		return errors.UnknownFieldError(string(field))
	}
	if !spec.Mutable {
		return errors.ImmutableFieldError(string(field))
	}
	m.values[field] = value
	return nil
}

// Fields returns a shallow copy of the current values.
func (m *Message) Fields() Fields {
	return maps.Clone(m.values)
}

func (m *Message) Timestamp() time.Time {
	ts, _ := m.values[FieldTimestamp].(time.Time)
	return ts
}

func (m *Message) Type() string     { return m.text(FieldType) }
func (m *Message) Name() string     { return m.text(FieldName) }
func (m *Message) Body() string     { return m.text(FieldBody) }
func (m *Message) Location() string { return m.text(FieldLocation) }

// Weight reports the weight as an int.
// It returns false when the stored value is not an integer.
func (m *Message) Weight() (int, bool) {
	return AsInt(m.values[FieldWeight])
}

// Tags returns the tags, whether stored as []string or []any.
func (m *Message) Tags() []string {
	return AsStrings(m.values[FieldTags])
}

func (m *Message) Attributes() map[string]any {
	attributes, _ := m.values[FieldAttributes].(map[string]any)
	return attributes
}

func (m *Message) text(field Field) string {
	value, ok := m.values[field]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// AsStrings reads a list of strings stored either as []string or []any.
// Any other value yields nil.
func AsStrings(value any) []string {
	switch list := value.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

// AsInt converts any Go integer kind to int.
// Unsigned values beyond the int range are rejected.
func AsInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}
