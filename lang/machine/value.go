package machine

import "strconv"

// Value is the interface implemented by any value manipulated by the
// machine: nil, booleans, numbers and heap objects (strings).
type Value interface {
	// String returns the printable form of the value.
	String() string

	// Type returns a short string describing the value's type.
	Type() string
}

// Bool is the type of boolean values.
type Bool bool

const (
	False Bool = false
	True  Bool = true
)

// Bool is a Value.
var _ Value = True

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Bool) Type() string { return "bool" }

// Number is the type of numeric values, a double-precision float.
type Number float64

var _ Value = Number(0)

// String returns the shortest decimal form that round-trips to the same
// value, so whole numbers print without a fractional part.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (n Number) Type() string { return "number" }

// NilType is the type of nil. Its only legal value is Nil. (We represent
// it as a number, not struct{}, so that Nil may be constant.)
type NilType byte

// Nil is the sentinel empty value.
const Nil = NilType(0)

var _ Value = Nil

func (NilType) String() string { return "nil" }
func (NilType) Type() string   { return "nil" }

// Truth returns the truthiness of v: nil and false are falsy, every
// other value is truthy.
func Truth(v Value) Bool {
	switch v := v.(type) {
	case NilType:
		return False
	case Bool:
		return v
	}
	return True
}

// Equal reports whether x and y are equal. Values of different types are
// never equal; nil equals only nil; booleans and numbers compare by
// payload; strings compare by identity, which interning makes equivalent
// to byte equality.
func Equal(x, y Value) bool {
	switch x := x.(type) {
	case NilType:
		_, ok := y.(NilType)
		return ok
	case Bool:
		yb, ok := y.(Bool)
		return ok && x == yb
	case Number:
		yn, ok := y.(Number)
		return ok && x == yn
	case *String:
		ys, ok := y.(*String)
		return ok && x == ys
	}
	return false
}
