package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruth(t *testing.T) {
	s := &String{s: "", hash: hashString("")}
	cases := []struct {
		v    Value
		want Bool
	}{
		{Nil, False},
		{False, False},
		{True, True},
		{Number(0), True},
		{Number(-1), True},
		{s, True}, // even the empty string is truthy
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Truth(tc.v), "%s %v", tc.v.Type(), tc.v)
	}
}

func TestEqual(t *testing.T) {
	foo := &String{s: "foo", hash: hashString("foo")}
	foo2 := &String{s: "foo", hash: hashString("foo")}

	vals := []Value{Nil, True, False, Number(0), Number(1.5), foo}

	// reflexive and symmetric
	for _, x := range vals {
		assert.True(t, Equal(x, x), "%v must equal itself", x)
		for _, y := range vals {
			assert.Equal(t, Equal(x, y), Equal(y, x), "%v / %v", x, y)
		}
	}

	// values of different types are never equal
	assert.False(t, Equal(Nil, False))
	assert.False(t, Equal(Number(0), False))
	assert.False(t, Equal(Number(1), True))
	assert.False(t, Equal(foo, Nil))

	assert.True(t, Equal(Number(1), Number(1.0)))
	assert.False(t, Equal(Number(1), Number(2)))

	// strings compare by identity; distinct objects with equal bytes
	// are unequal, which is why the machine must intern them
	assert.False(t, Equal(foo, foo2))
}

func TestValueStrings(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{True, "true"},
		{False, "false"},
		{Number(3), "3"},
		{Number(2.5), "2.5"},
		{Number(-4), "-4"},
		{Number(0.1), "0.1"},
		{&String{s: "raw bytes"}, "raw bytes"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.v.String())
	}
}

func TestValueTypes(t *testing.T) {
	assert.Equal(t, "nil", Nil.Type())
	assert.Equal(t, "bool", True.Type())
	assert.Equal(t, "number", Number(1).Type())
	assert.Equal(t, "string", (&String{}).Type())
}
