// Package schema checks untyped JSON values against declared shapes.
//
// A Schema is a closed tagged variant: Type, Literal, Union, Record, List and
// Dictionary. Schemas compose recursively and Validate walks them with a single
// switch over the tag. Failures are human readable and start with the JSON path
// of the offending value, e.g.
//
//	$.results[3].size: "12" is not a number
//	$: missing required key "id" in {"title":5}
//
// Validation is pure: it never mutates its input and repeated calls on the same
// value yield the same result.
package schema

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/result"
)

// Kind identifies the variant of a Schema.
type Kind uint8

const (
	KindType Kind = iota
	KindLiteral
	KindUnion
	KindRecord
	KindList
	KindDictionary
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindLiteral:
		return "literal"
	case KindUnion:
		return "union"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindDictionary:
		return "dictionary"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// TypeName is a primitive accepted by Type.
type TypeName string

const (
	String  TypeName = "string"
	Number  TypeName = "number"
	Boolean TypeName = "boolean"
	Any     TypeName = "any"
)

// Field is one declared key of a Record.
type Field struct {
	Name   string
	Schema Schema
}

// F declares a record field.
func F(name string, s Schema) Field {
	return Field{Name: name, Schema: s}
}

// Schema describes an expected JSON shape. The zero value is Type(Any).
type Schema struct {
	kind     Kind
	typeName TypeName
	literal  any
	children []Schema
	fields   []Field
	elem     *Schema
}

// Type matches a primitive by its runtime type, without coercion.
func Type(name TypeName) Schema {
	return Schema{kind: KindType, typeName: name}
}

// Literal matches a fixed string, number, bool or nil by equality.
func Literal(v any) Schema {
	return Schema{kind: KindLiteral, literal: v}
}

// Union matches when any of its alternatives matches.
func Union(alternatives ...Schema) Schema {
	return Schema{kind: KindUnion, children: alternatives}
}

// Record matches an object that has every declared field. Fields are checked
// in declaration order and unknown keys are ignored.
func Record(fields ...Field) Schema {
	return Schema{kind: KindRecord, fields: fields}
}

// List matches an array whose every element matches elem.
func List(elem Schema) Schema {
	return Schema{kind: KindList, elem: &elem}
}

// Dictionary matches an object whose every value matches value. Keys are
// arbitrary strings.
func Dictionary(value Schema) Schema {
	return Schema{kind: KindDictionary, elem: &value}
}

// Nullable is shorthand for Union(s, Literal(nil)).
func Nullable(s Schema) Schema {
	return Union(s, Literal(nil))
}

func (s Schema) Kind() Kind { return s.kind }

// Validate checks v against s.
func (s Schema) Validate(v any) result.Result[struct{}, string] {
	if msg, ok := s.check(v, "$"); !ok {
		return result.Failure[struct{}](msg)
	}
	return result.Success[struct{}, string](struct{}{})
}

// check returns ("", true) on a match and a path-prefixed message otherwise.
func (s Schema) check(v any, path string) (string, bool) {
	switch s.kind {
	case KindType:
		if matchesType(s.typeName, v) {
			return "", true
		}
		return fmt.Sprintf("%s: %s is not a %s", path, render(v), s.typeName), false

	case KindLiteral:
		if literalEqual(s.literal, v) {
			return "", true
		}
		return fmt.Sprintf("%s: %s is not %s", path, render(v), render(s.literal)), false

	case KindUnion:
		branchErrs := make([]string, 0, len(s.children))
		for _, alt := range s.children {
			msg, ok := alt.check(v, path)
			if ok {
				return "", true
			}
			branchErrs = append(branchErrs, msg)
		}
		return fmt.Sprintf("%s: %s did not match %s (%s)", path, render(v), s, strings.Join(branchErrs, "; ")), false

	case KindRecord:
		obj, ok := asObject(v)
		if !ok {
			return fmt.Sprintf("%s: expected %s, got %s", path, s, render(v)), false
		}
		for _, f := range s.fields {
			fv, present := obj[f.Name]
			if !present {
				return fmt.Sprintf("%s: missing required key %q in %s", path, f.Name, render(v)), false
			}
			if msg, ok := f.Schema.check(fv, path+"."+f.Name); !ok {
				return msg, false
			}
		}
		return "", true

	case KindList:
		arr, ok := asArray(v)
		if !ok {
			return fmt.Sprintf("%s: expected %s, but %s was not an array", path, s, render(v)), false
		}
		for i, e := range arr {
			if msg, ok := s.elem.check(e, fmt.Sprintf("%s[%d]", path, i)); !ok {
				return msg, false
			}
		}
		return "", true

	case KindDictionary:
		obj, ok := asObject(v)
		if !ok {
			return fmt.Sprintf("%s: expected %s, got %s", path, s, render(v)), false
		}
		for _, k := range sortedKeys(obj) {
			if msg, ok := s.elem.check(obj[k], fmt.Sprintf("%s[%q]", path, k)); !ok {
				return msg, false
			}
		}
		return "", true
	}

	return fmt.Sprintf("%s: unsupported schema %s", path, s.kind), false
}

// String renders s in a TypeScript-like notation used inside failure messages.
func (s Schema) String() string {
	switch s.kind {
	case KindType:
		if s.typeName == "" {
			return string(Any)
		}
		return string(s.typeName)
	case KindLiteral:
		return render(s.literal)
	case KindUnion:
		parts := make([]string, len(s.children))
		for i, c := range s.children {
			parts[i] = c.String()
		}
		return strings.Join(parts, " | ")
	case KindRecord:
		parts := make([]string, len(s.fields))
		for i, f := range s.fields {
			parts[i] = fmt.Sprintf("%q: %s", f.Name, f.Schema)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindList:
		if s.elem.kind == KindUnion {
			return "(" + s.elem.String() + ")[]"
		}
		return s.elem.String() + "[]"
	case KindDictionary:
		return "{[key: string]: " + s.elem.String() + "}"
	}
	return s.kind.String()
}
