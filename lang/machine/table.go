package machine

// tableMaxLoad is the count-to-capacity ratio beyond which a table
// grows.
const tableMaxLoad = 0.75

// A Table maps interned string keys to values using open addressing
// with linear probing. Deleting leaves a tombstone in the bucket so
// probe chains stay intact; count includes tombstones, which keeps the
// load factor honest about probe length.
type Table struct {
	count   int // occupied buckets, tombstones included
	entries []entry
}

// An entry is one bucket: empty (nil key, nil value), a tombstone (nil
// key, True value) or occupied.
type entry struct {
	key   *String
	value Value
}

// Get returns the value stored under key.
func (t *Table) Get(key *String) (Value, bool) {
	if t.count == 0 {
		return nil, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key and reports whether the key was absent.
func (t *Table) Set(key *String, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow()
	}

	e := findEntry(t.entries, key)
	isNew := e.key == nil
	if isNew && e.value == nil {
		// a never-used bucket; reusing a tombstone leaves count as is
		t.count++
	}
	e.key, e.value = key, value
	return isNew
}

// Delete removes key, leaving a tombstone. count is unchanged, the
// bucket still occupies capacity until the next grow.
func (t *Table) Delete(key *String) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key, e.value = nil, True
	return true
}

// findEntry returns the bucket for key: its occupied bucket if present,
// else the first tombstone on its probe chain, else the empty bucket
// that terminates the chain. Keys are interned so comparison is pointer
// identity. The load factor keeps at least one empty bucket, so the
// probe terminates.
func findEntry(entries []entry, key *String) *entry {
	n := uint32(len(entries))
	var tombstone *entry
	for i := key.hash % n; ; i = (i + 1) % n {
		e := &entries[i]
		switch {
		case e.key == key:
			return e
		case e.key == nil && e.value == nil:
			// empty bucket: the key is absent
			if tombstone != nil {
				return tombstone
			}
			return e
		case e.key == nil && tombstone == nil:
			tombstone = e
		}
	}
}

// grow doubles the capacity (minimum 8) and reinserts the live entries.
// Tombstones are dropped and count recomputed to live entries only.
func (t *Table) grow() {
	ncap := 8
	if len(t.entries) > 0 {
		ncap = len(t.entries) * 2
	}

	entries := make([]entry, ncap)
	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.key == nil {
			continue
		}
		dst := findEntry(entries, e.key)
		dst.key, dst.value = e.key, e.value
		t.count++
	}
	t.entries = entries
}

// FindString returns the interned string with the given bytes and hash,
// or nil if none exists. Unlike findEntry it compares content, not
// identity: it is the one lookup that runs before a candidate String
// object exists.
func (t *Table) FindString(s string, hash uint32) *String {
	if t.count == 0 {
		return nil
	}
	n := uint32(len(t.entries))
	for i := hash % n; ; i = (i + 1) % n {
		e := &t.entries[i]
		if e.key == nil {
			// stop on a truly empty bucket, probe past tombstones
			if e.value == nil {
				return nil
			}
		} else if e.key.hash == hash && e.key.s == s {
			return e.key
		}
	}
}
