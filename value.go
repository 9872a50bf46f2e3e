// value.go: the evaluator's value model.
//
// Values are the runtime-of-compile-time domain: 32-bit numbers, strings
// and vectors. They are immutable; push/pop return new values. Strings and
// vectors exist only at compile time; the emitted module has no memory
// representation for them.
package nepl

import (
	"fmt"
	"strings"
)

// ValueTag discriminates the Value sum.
type ValueTag int

const (
	VTNumber ValueTag = iota
	VTStr
	VTVector
)

// Value is a tagged compile-time value.
type Value struct {
	Tag  ValueTag
	Data any
}

// Num makes a number value.
func Num(n int32) Value { return Value{Tag: VTNumber, Data: n} }

// Str makes a string value.
func Str(s string) Value { return Value{Tag: VTStr, Data: s} }

// Vec makes a vector value. The slice is owned by the value afterwards.
func Vec(elems []Value) Value { return Value{Tag: VTVector, Data: elems} }

// AsNumber returns the numeric payload; valid only when Tag is VTNumber.
func (v Value) AsNumber() int32 { return v.Data.(int32) }

// AsStr returns the string payload; valid only when Tag is VTStr.
func (v Value) AsStr() string { return v.Data.(string) }

// AsVector returns the element slice; valid only when Tag is VTVector.
func (v Value) AsVector() []Value { return v.Data.([]Value) }

// Truthy is the language's boolean view: zero, the empty string and the
// empty vector are false, everything else is true.
func (v Value) Truthy() bool {
	switch v.Tag {
	case VTNumber:
		return v.AsNumber() != 0
	case VTStr:
		return v.AsStr() != ""
	case VTVector:
		return len(v.AsVector()) > 0
	}
	return false
}

// String renders a value the way the REPL shows results.
func (v Value) String() string {
	switch v.Tag {
	case VTNumber:
		return fmt.Sprintf("%d", v.AsNumber())
	case VTStr:
		return fmt.Sprintf("%q", v.AsStr())
	case VTVector:
		var b strings.Builder
		b.WriteByte('[')
		for i, el := range v.AsVector() {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(el.String())
		}
		b.WriteByte(']')
		return b.String()
	}
	return "<invalid>"
}

func tagName(tag ValueTag) string {
	switch tag {
	case VTNumber:
		return "number"
	case VTStr:
		return "string"
	case VTVector:
		return "vector"
	}
	return "invalid"
}
