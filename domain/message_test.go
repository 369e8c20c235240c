package domain

import (
	"math"
	"subpub/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validFields() Fields {
	return Fields{
		FieldType:     "log",
		FieldName:     "svc-a",
		FieldBody:     "hello",
		FieldLocation: "us-east",
	}
}

func TestNewMessage_EndToEnd(t *testing.T) {
	req := require.New(t)
	before := time.Now()

	// When a message is built with only the required fields
	msg, err := NewMessage(validFields())
	req.NoError(err)

	// Then the supplied values are kept
	req.Equal("log", msg.Type())
	req.Equal("svc-a", msg.Name())
	req.Equal("hello", msg.Body())
	req.Equal("us-east", msg.Location())

	// And the defaults are filled in
	weight, ok := msg.Get(FieldWeight)
	req.True(ok)
	req.Equal(0, weight)
	req.Equal([]string{}, msg.Tags())
	req.Equal(map[string]any{}, msg.Attributes())
	req.False(msg.Timestamp().Before(before))
	req.False(msg.Timestamp().After(time.Now()))

	// When the weight is updated
	req.NoError(msg.Set(FieldWeight, 5))

	// Then the new weight is visible
	weight, ok = msg.Get(FieldWeight)
	req.True(ok)
	req.Equal(5, weight)
}

func TestNewMessage_MissingRequiredField(t *testing.T) {
	for _, field := range []Field{FieldType, FieldName, FieldBody, FieldLocation} {
		t.Run(string(field), func(t *testing.T) {
			req := require.New(t)
			values := validFields()
			delete(values, field)

			msg, err := NewMessage(values)

			req.Nil(msg)
			req.ErrorIs(err, errors.ErrMissingRequiredField)
			var fieldErr *errors.FieldError
			req.ErrorAs(err, &fieldErr)
			req.Equal(string(field), fieldErr.Field)
		})
	}
}

func TestNewMessage_UnknownField(t *testing.T) {
	req := require.New(t)
	values := validFields()
	values["foo"] = 1

	msg, err := NewMessage(values)

	req.Nil(msg)
	req.ErrorIs(err, errors.ErrUnknownField)
	var fieldErr *errors.FieldError
	req.ErrorAs(err, &fieldErr)
	req.Equal("foo", fieldErr.Field)
}

func TestNewMessage_UnknownFieldWinsOverMissing(t *testing.T) {
	req := require.New(t)

	// Given nothing but an undeclared field
	_, err := NewMessage(Fields{"zzz": 1, "aaa": 2})

	// Then the first undeclared name in sorted order is reported
	req.ErrorIs(err, errors.ErrUnknownField)
	var fieldErr *errors.FieldError
	req.ErrorAs(err, &fieldErr)
	req.Equal("aaa", fieldErr.Field)
}

func TestNewMessage_SuppliedValuesOverrideDefaults(t *testing.T) {
	req := require.New(t)
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	values := validFields()
	values[FieldTimestamp] = at
	values[FieldWeight] = 3
	values[FieldTags] = []string{"a"}

	msg, err := NewMessage(values)

	req.NoError(err)
	req.Equal(at, msg.Timestamp())
	weight, ok := msg.Weight()
	req.True(ok)
	req.Equal(3, weight)
	req.Equal([]string{"a"}, msg.Tags())
}

func TestNewMessage_DefaultsAreIndependent(t *testing.T) {
	req := require.New(t)

	// Given two messages built without tags nor attributes
	first, err := NewMessage(validFields())
	req.NoError(err)
	second, err := NewMessage(validFields())
	req.NoError(err)

	// When the first one is changed in place
	req.NoError(first.Set(FieldTags, append(first.Tags(), "new")))
	first.Attributes()["k"] = "v"

	// Then the second one keeps its own empty values
	req.Equal([]string{"new"}, first.Tags())
	req.Empty(second.Tags())
	req.Empty(second.Attributes())
}

func TestNewMessage_TimestampIsFresh(t *testing.T) {
	req := require.New(t)

	first, err := NewMessage(validFields())
	req.NoError(err)
	time.Sleep(5 * time.Millisecond)
	second, err := NewMessage(validFields())
	req.NoError(err)

	req.True(second.Timestamp().After(first.Timestamp()))
}

func TestMessage_SetImmutableField(t *testing.T) {
	immutable := []Field{FieldType, FieldName, FieldBody, FieldLocation, FieldTimestamp}
	for _, field := range immutable {
		t.Run(string(field), func(t *testing.T) {
			req := require.New(t)
			msg, err := NewMessage(validFields())
			req.NoError(err)
			before, _ := msg.Get(field)

			err = msg.Set(field, "changed")

			req.ErrorIs(err, errors.ErrImmutableField)
			after, _ := msg.Get(field)
			req.Equal(before, after)
		})
	}
}

func TestMessage_SetUnknownField(t *testing.T) {
	req := require.New(t)
	msg, err := NewMessage(validFields())
	req.NoError(err)

	err = msg.Set("foo", 1)

	req.ErrorIs(err, errors.ErrUnknownField)
	var fieldErr *errors.FieldError
	req.ErrorAs(err, &fieldErr)
	req.Equal("foo", fieldErr.Field)
	_, ok := msg.Get("foo")
	req.False(ok)
}

func TestMessage_SetMutableFields(t *testing.T) {
	req := require.New(t)
	msg, err := NewMessage(validFields())
	req.NoError(err)

	req.NoError(msg.Set(FieldTags, []string{"x", "y"}))
	req.NoError(msg.Set(FieldAttributes, map[string]any{"k": 1}))

	req.Equal([]string{"x", "y"}, msg.Tags())
	req.Equal(map[string]any{"k": 1}, msg.Attributes())
}

func TestLookup(t *testing.T) {
	req := require.New(t)

	spec, ok := Lookup(FieldWeight)
	req.True(ok)
	req.True(spec.Mutable)
	req.False(spec.Required)
	req.NotNil(spec.Default)

	spec, ok = Lookup(FieldBody)
	req.True(ok)
	req.False(spec.Mutable)
	req.True(spec.Required)
	req.Nil(spec.Default)

	_, ok = Lookup("foo")
	req.False(ok)
}

func TestFieldNames_DeclarationOrder(t *testing.T) {
	req := require.New(t)

	names := FieldNames()

	req.Equal([]Field{
		FieldTimestamp, FieldType, FieldWeight, FieldName,
		FieldBody, FieldLocation, FieldTags, FieldAttributes,
	}, names)

	// The returned slice is a copy
	names[0] = "other"
	req.Equal(FieldTimestamp, FieldNames()[0])
}

func TestMessage_TypedAccessors(t *testing.T) {
	req := require.New(t)
	values := validFields()
	values[FieldName] = 42
	values[FieldWeight] = int64(7)
	values[FieldTags] = []any{"a", 1}

	msg, err := NewMessage(values)
	req.NoError(err)

	req.Equal("42", msg.Name())
	weight, ok := msg.Weight()
	req.True(ok)
	req.Equal(7, weight)
	req.Equal([]string{"a", "1"}, msg.Tags())

	req.NoError(msg.Set(FieldWeight, "heavy"))
	_, ok = msg.Weight()
	req.False(ok)
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int
		ok       bool
	}{
		{name: "int", value: 3, expected: 3, ok: true},
		{name: "int64", value: int64(-2), expected: -2, ok: true},
		{name: "small uint64", value: uint64(7), expected: 7, ok: true},
		{name: "uint64 beyond int", value: uint64(math.MaxUint64), ok: false},
		{name: "uint beyond int", value: uint(math.MaxUint), ok: false},
		{name: "string", value: "3", ok: false},
		{name: "nil", value: nil, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, ok := AsInt(tt.value)
			req.Equal(tt.ok, ok)
			req.Equal(tt.expected, got)
		})
	}
}
