// Package dict implements the per-stream dictionary of variable values.
//
// Both sides of a stream assign ids in registration order (0, 1, 2, ...) and stop
// registering once the declared capacity is reached, so an encoder and a decoder that see
// the same sequence of variable strings always agree on every id.
package dict

import "github.com/arloliu/clpir/internal/hash"

// Table maps dictionary ids to values and, for the encoding side, values back to ids.
//
// Lookups by value go through an xxHash64 index. Distinct values sharing a hash are kept
// in a short per-hash chain and resolved by string comparison.
type Table struct {
	capacity int
	values   []string
	byHash   map[uint64][]uint32
	pending  int // number of trailing values not yet committed
}

// NewTable creates a table that accepts at most capacity values.
// A capacity of zero yields a disabled table that never registers anything.
func NewTable(capacity int) *Table {
	t := &Table{capacity: capacity}
	if capacity > 0 {
		t.byHash = make(map[uint64][]uint32)
	}

	return t
}

// Enabled reports whether the table can hold any value.
func (t *Table) Enabled() bool {
	return t.capacity > 0
}

// Capacity returns the declared maximum number of values.
func (t *Table) Capacity() int {
	return t.capacity
}

// Len returns the number of registered values, including uncommitted ones.
func (t *Table) Len() int {
	return len(t.values)
}

// Lookup returns the id of value if it has been registered.
func (t *Table) Lookup(value string) (uint32, bool) {
	if !t.Enabled() {
		return 0, false
	}

	for _, id := range t.byHash[hash.ID(value)] {
		if t.values[id] == value {
			return id, true
		}
	}

	return 0, false
}

// Get returns the value registered under id.
func (t *Table) Get(id uint64) (string, bool) {
	if id >= uint64(len(t.values)) {
		return "", false
	}

	return t.values[id], true
}

// Register adds value under the next id if there is room. Registered values are pending
// until Commit is called; Rollback discards them.
func (t *Table) Register(value string) (uint32, bool) {
	if len(t.values) >= t.capacity {
		return 0, false
	}

	id := uint32(len(t.values)) //nolint:gosec
	t.values = append(t.values, value)
	h := hash.ID(value)
	t.byHash[h] = append(t.byHash[h], id)
	t.pending++

	return id, true
}

// Commit makes all pending registrations permanent.
func (t *Table) Commit() {
	t.pending = 0
}

// Rollback removes all registrations made since the last Commit.
func (t *Table) Rollback() {
	for ; t.pending > 0; t.pending-- {
		last := len(t.values) - 1
		h := hash.ID(t.values[last])
		chain := t.byHash[h]
		chain = chain[:len(chain)-1]
		if len(chain) == 0 {
			delete(t.byHash, h)
		} else {
			t.byHash[h] = chain
		}
		t.values = t.values[:last]
	}
}
