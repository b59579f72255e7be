package machine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newString(s string) *String {
	return &String{s: s, hash: hashString(s)}
}

func TestTableSetGet(t *testing.T) {
	var tbl Table
	k := newString("k")

	_, ok := tbl.Get(k)
	require.False(t, ok)

	require.True(t, tbl.Set(k, Number(1)), "first set reports a new key")
	v, ok := tbl.Get(k)
	require.True(t, ok)
	assert.Equal(t, Number(1), v)

	require.False(t, tbl.Set(k, Number(2)), "overwrite reports an existing key")
	v, _ = tbl.Get(k)
	assert.Equal(t, Number(2), v)
}

func TestTableDelete(t *testing.T) {
	var tbl Table
	k := newString("k")

	require.False(t, tbl.Delete(k), "deleting an absent key")

	tbl.Set(k, True)
	require.True(t, tbl.Delete(k))
	_, ok := tbl.Get(k)
	assert.False(t, ok)
	require.False(t, tbl.Delete(k), "double delete")
}

func TestTableTombstoneProbeChain(t *testing.T) {
	var tbl Table
	// keys crafted to collide in the initial 8-bucket table
	a := &String{s: "a", hash: 0}
	b := &String{s: "b", hash: 8}
	c := &String{s: "c", hash: 16}
	tbl.Set(a, Number(1))
	tbl.Set(b, Number(2))
	tbl.Set(c, Number(3))

	require.True(t, tbl.Delete(b))
	assert.Equal(t, 3, tbl.count, "a tombstone still occupies capacity")

	// the probe chain must stay intact across the tombstone
	v, ok := tbl.Get(c)
	require.True(t, ok)
	assert.Equal(t, Number(3), v)

	// a new colliding key reuses the tombstone bucket without growing
	// the count
	d := &String{s: "d", hash: 24}
	require.True(t, tbl.Set(d, Number(4)))
	assert.Equal(t, 3, tbl.count)
	v, ok = tbl.Get(d)
	require.True(t, ok)
	assert.Equal(t, Number(4), v)
}

func TestTableGrow(t *testing.T) {
	var tbl Table
	keys := make([]*String, 100)
	for i := range keys {
		keys[i] = newString(fmt.Sprintf("key-%d", i))
		tbl.Set(keys[i], Number(i))
	}
	for i, k := range keys {
		v, ok := tbl.Get(k)
		require.True(t, ok, "key %d lost in growth", i)
		assert.Equal(t, Number(i), v)
	}
}

func TestTableGrowDropsTombstones(t *testing.T) {
	var tbl Table
	keys := make([]*String, 6)
	for i := range keys {
		keys[i] = newString(fmt.Sprintf("key-%d", i))
		tbl.Set(keys[i], Number(i))
	}
	tbl.Delete(keys[0])
	tbl.Delete(keys[1])
	require.Equal(t, 6, tbl.count)

	// the next set crosses the load factor and grows; reinsertion drops
	// the tombstones and recomputes count from live entries
	extra := newString("extra")
	tbl.Set(extra, Number(99))
	assert.Equal(t, 5, tbl.count)

	for i := 2; i < 6; i++ {
		_, ok := tbl.Get(keys[i])
		require.True(t, ok)
	}
	for i := 0; i < 2; i++ {
		_, ok := tbl.Get(keys[i])
		require.False(t, ok, "deleted key %d resurrected by growth", i)
	}
}

func TestTableFindString(t *testing.T) {
	var tbl Table
	foo := newString("foo")

	require.Nil(t, tbl.FindString("foo", foo.hash), "empty table")

	tbl.Set(foo, Nil)
	got := tbl.FindString("foo", foo.hash)
	assert.Same(t, foo, got, "content lookup must return the stored object")
	assert.Nil(t, tbl.FindString("bar", hashString("bar")))

	// a deleted string is no longer findable, and its tombstone does
	// not stop the probe
	tbl.Delete(foo)
	assert.Nil(t, tbl.FindString("foo", foo.hash))
}

func TestHashStringFNV1a(t *testing.T) {
	// reference values of 32-bit FNV-1a
	assert.Equal(t, uint32(2166136261), hashString(""))
	assert.Equal(t, uint32(0xe40c292c), hashString("a"))
	assert.Equal(t, uint32(0xbf9cf968), hashString("foobar"))
}
