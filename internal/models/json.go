package models

import (
	"encoding/json"
	"sort"
	"strconv"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	NullValue ValueKind = iota
	BoolValue
	NumberValue
	StringValue
	ArrayValue
	ObjectValue
)

func (k ValueKind) String() string {
	switch k {
	case NullValue:
		return "null"
	case BoolValue:
		return "bool"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case ArrayValue:
		return "array"
	case ObjectValue:
		return "object"
	}
	return "unknown"
}

// Value is a parsed JSON document node. It is never mutated after parsing.
// Object keys are kept sorted so iteration order does not depend on the
// source text.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number json.Number
	String string
	Items  []Value
	keys   []string
	fields map[string]Value
}

// NewNull returns the JSON null value.
func NewNull() Value { return Value{Kind: NullValue} }

// NewBool wraps b.
func NewBool(b bool) Value { return Value{Kind: BoolValue, Bool: b} }

// NewNumber wraps n.
func NewNumber(n json.Number) Value { return Value{Kind: NumberValue, Number: n} }

// NewString wraps s.
func NewString(s string) Value { return Value{Kind: StringValue, String: s} }

// NewArray wraps items.
func NewArray(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: ArrayValue, Items: items}
}

// NewObject builds an object value from fields.
func NewObject(fields map[string]Value) Value {
	keys := make([]string, 0, len(fields))
	copied := make(map[string]Value, len(fields))
	for k, v := range fields {
		keys = append(keys, k)
		copied[k] = v
	}
	sort.Strings(keys)
	return Value{Kind: ObjectValue, keys: keys, fields: copied}
}

// Keys returns the object's keys in lexicographic order.
func (v Value) Keys() []string {
	return v.keys
}

// Field returns the value stored under key.
func (v Value) Field(key string) (Value, bool) {
	f, ok := v.fields[key]
	return f, ok
}

// Len returns the number of array items or object fields.
func (v Value) Len() int {
	switch v.Kind {
	case ArrayValue:
		return len(v.Items)
	case ObjectValue:
		return len(v.keys)
	}
	return 0
}

// IsScalar reports whether v is a string, boolean or number.
func (v Value) IsScalar() bool {
	return v.Kind == BoolValue || v.Kind == NumberValue || v.Kind == StringValue
}

// NumberKind classifies a number value: non-negative integers are Usize,
// negative integers Isize, everything else Float.
func (v Value) NumberKind() Primitive {
	n := string(v.Number)
	if _, err := strconv.ParseUint(n, 10, 64); err == nil {
		return Usize
	}
	if _, err := strconv.ParseInt(n, 10, 64); err == nil {
		return Isize
	}
	return Float
}
