// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a value tree for JSON values, and a parser that
// constructs value trees from JSON source.
package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Markkimotho/json-parser/internal/escape"
)

// A Value is an arbitrary JSON value. The concrete type is one of Null's
// type, Bool, Number, String, Array, or Object.
//
// The JSON method renders the value as compact text in the dialect accepted
// by Parse, so that parsing the result yields an equal value. MarshalJSON
// renders standard JSON, with strings escaped.
type Value interface {
	JSON() string
	MarshalJSON() ([]byte, error)
}

// Null is the null constant.
var Null Value = nullValue{}

type nullValue struct{}

func (nullValue) JSON() string                 { return "null" }
func (nullValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (nullValue) String() string               { return "Null" }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (b Bool) JSON() string                 { return strconv.FormatBool(bool(b)) }
func (b Bool) MarshalJSON() ([]byte, error) { return []byte(b.JSON()), nil }

// A String is a string value. Its contents are exactly the characters that
// appeared between the quotation marks in the source.
type String string

// JSON renders s verbatim between double quotation marks.
func (s String) JSON() string                 { return `"` + string(s) + `"` }
func (s String) MarshalJSON() ([]byte, error) { return escape.Quote(string(s)), nil }

// A Number is an integer or floating-point value. Which one is determined by
// the source text: a number with a decimal point is floating-point.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

// Int constructs an integer Number.
func Int(z int64) Number { return Number{i: z} }

// Float constructs a floating-point Number.
func Float(f float64) Number { return Number{isFloat: true, f: f} }

// IsInt reports whether n is an integer value.
func (n Number) IsInt() bool { return !n.isFloat }

// Int64 returns n as an integer, truncating a floating-point value.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns n as a floating-point value.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Equal reports whether n and o are the same kind of number with the same
// value.
func (n Number) Equal(o Number) bool {
	if n.isFloat != o.isFloat {
		return false
	} else if n.isFloat {
		return n.f == o.f
	}
	return n.i == o.i
}

// JSON renders n in decimal. A floating-point value always includes a
// decimal point, so that it reads back as floating-point.
func (n Number) JSON() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	s := strconv.FormatFloat(n.f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.isFloat && (math.IsNaN(n.f) || math.IsInf(n.f, 0)) {
		return nil, fmt.Errorf("unsupported number %v", n.f)
	}
	return []byte(n.JSON()), nil
}

func (n Number) String() string {
	if n.isFloat {
		return "Float(" + n.JSON() + ")"
	}
	return "Int(" + n.JSON() + ")"
}

// An Array is a sequence of values.
type Array []Value

func (a Array) Len() int { return len(a) }

func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(valueJSON(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) MarshalJSON() ([]byte, error) { return appendStandard(nil, a) }

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// JSON renders m as "key":value.
func (m Member) JSON() string { return String(m.Key).JSON() + ":" + valueJSON(m.Value) }

func (m Member) String() string { return fmt.Sprintf("Member(key=%q)", m.Key) }

// Field constructs an object member with the given key and value.
// The value must be a string, int, float, bool, nil, or ast.Value.
func Field(key string, value any) *Member { return &Member{Key: key, Value: ToValue(value)} }

// An Object is a collection of key-value members. The keys of an Object
// produced by Parse are unique, and the members are in the order the keys
// first appeared in the source.
type Object []*Member

func (o Object) Len() int { return len(o) }

// Find returns the member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Keys returns the keys of o in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o Object) MarshalJSON() ([]byte, error) { return appendStandard(nil, o) }

func (o Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o)) }

// ToValue converts a string, int, int64, float64, bool, nil, or ast.Value into
// an ast.Value. It panics if v does not have one of those types.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case string:
		return String(t)
	default:
		panic(fmt.Sprintf("unsupported value type %T", v))
	}
}

func valueJSON(v Value) string {
	if v == nil {
		return "null"
	}
	return v.JSON()
}

// appendStandard appends the standard JSON encoding of v to buf.
func appendStandard(buf []byte, v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case Array:
		buf = append(buf, '[')
		for i, elt := range t {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			if buf, err = appendStandard(buf, elt); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case Object:
		buf = append(buf, '{')
		for i, m := range t {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, escape.Quote(m.Key)...)
			buf = append(buf, ':')
			var err error
			if buf, err = appendStandard(buf, m.Value); err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return append(buf, data...), nil
	}
}
