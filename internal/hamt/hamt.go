// Package hamt is a persistent hash array mapped trie.
//
// Every update returns a new Map that shares untouched nodes with the old
// one, so copying a Map is O(1) and the copy stays independent.
package hamt

const (
	bits = 5
	size = 1 << bits // 32
	mask = size - 1
)

// Keyer supplies hashing and equality for keys.
type Keyer[K any] interface {
	Hash(K) uint32
	Equal(a, b K) bool
}

// Map is an immutable hash map.
type Map[K, V any] struct {
	root  *node[K, V]
	count int
}

// Entry is one key-value pair.
type Entry[K, V any] struct {
	Key   K
	Value V
}

type node[K, V any] struct {
	bitmap uint32 // which indices are populated
	nodes  []any  // entry[K, V] or *node[K, V]
}

type entry[K, V any] struct {
	hash  uint32
	key   K
	value V
}

// Empty returns an empty map.
func Empty[K, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return m.count
}

// Get returns the value for key.
func (m *Map[K, V]) Get(kr Keyer[K], key K) (V, bool) {
	if m == nil || m.root == nil {
		var zero V
		return zero, false
	}
	return m.root.get(kr, kr.Hash(key), key, 0)
}

// Put returns a new map with key set to value.
func (m *Map[K, V]) Put(kr Keyer[K], key K, value V) *Map[K, V] {
	hash := kr.Hash(key)

	root := &node[K, V]{}
	if m != nil && m.root != nil {
		root = m.root
	}
	newRoot, added := root.put(kr, hash, key, value, 0)

	count := m.Len()
	if added {
		count++
	}
	return &Map[K, V]{root: newRoot, count: count}
}

// Remove returns a new map without key.
func (m *Map[K, V]) Remove(kr Keyer[K], key K) *Map[K, V] {
	if m == nil || m.root == nil {
		return m
	}
	newRoot, removed := m.root.remove(kr, kr.Hash(key), key, 0)
	if !removed {
		return m
	}
	return &Map[K, V]{root: newRoot, count: m.count - 1}
}

// Items returns all entries. The order is stable for a given map but
// otherwise unspecified.
func (m *Map[K, V]) Items() []Entry[K, V] {
	items := make([]Entry[K, V], 0, m.Len())
	if m != nil && m.root != nil {
		m.root.collect(&items)
	}
	return items
}

func (n *node[K, V]) get(kr Keyer[K], hash uint32, key K, shift uint) (V, bool) {
	var zero V
	if shift >= 32 {
		// Collision bucket search
		for _, nd := range n.nodes {
			if e, ok := nd.(entry[K, V]); ok && kr.Equal(e.key, key) {
				return e.value, true
			}
		}
		return zero, false
	}

	idx := (hash >> shift) & mask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return zero, false
	}

	switch v := n.nodes[popcount(n.bitmap&(bit-1))].(type) {
	case entry[K, V]:
		if v.hash == hash && kr.Equal(v.key, key) {
			return v.value, true
		}
	case *node[K, V]:
		return v.get(kr, hash, key, shift+bits)
	}
	return zero, false
}

func (n *node[K, V]) clone() *node[K, V] {
	c := &node[K, V]{bitmap: n.bitmap, nodes: make([]any, len(n.nodes))}
	copy(c.nodes, n.nodes)
	return c
}

func (n *node[K, V]) put(kr Keyer[K], hash uint32, key K, value V, shift uint) (*node[K, V], bool) {
	fresh := entry[K, V]{hash: hash, key: key, value: value}

	// Hash bits exhausted: the node is a flat collision bucket.
	if shift >= 32 {
		c := n.clone()
		for i, nd := range c.nodes {
			if e, ok := nd.(entry[K, V]); ok && kr.Equal(e.key, key) {
				c.nodes[i] = fresh
				return c, false
			}
		}
		c.nodes = append(c.nodes, fresh)
		return c, true
	}

	idx := (hash >> shift) & mask
	bit := uint32(1) << idx
	c := n.clone()

	if n.bitmap&bit == 0 {
		c.bitmap |= bit
		pos := popcount(c.bitmap & (bit - 1))
		c.nodes = append(c.nodes, nil)
		copy(c.nodes[pos+1:], c.nodes[pos:])
		c.nodes[pos] = fresh
		return c, true
	}

	pos := popcount(n.bitmap & (bit - 1))
	switch v := c.nodes[pos].(type) {
	case entry[K, V]:
		if v.hash == hash && kr.Equal(v.key, key) {
			c.nodes[pos] = fresh
			return c, false
		}
		// Push both entries one level down.
		child := &node[K, V]{}
		child, _ = child.put(kr, v.hash, v.key, v.value, shift+bits)
		child, added := child.put(kr, hash, key, value, shift+bits)
		c.nodes[pos] = child
		return c, added
	case *node[K, V]:
		child, added := v.put(kr, hash, key, value, shift+bits)
		c.nodes[pos] = child
		return c, added
	}
	return c, false
}

func (n *node[K, V]) without(pos int, clearBit uint32) *node[K, V] {
	c := &node[K, V]{bitmap: n.bitmap &^ clearBit, nodes: make([]any, len(n.nodes)-1)}
	copy(c.nodes[:pos], n.nodes[:pos])
	copy(c.nodes[pos:], n.nodes[pos+1:])
	return c
}

func (n *node[K, V]) remove(kr Keyer[K], hash uint32, key K, shift uint) (*node[K, V], bool) {
	if shift >= 32 {
		for i, nd := range n.nodes {
			if e, ok := nd.(entry[K, V]); ok && kr.Equal(e.key, key) {
				return n.without(i, 0), true
			}
		}
		return n, false
	}

	idx := (hash >> shift) & mask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return n, false
	}

	pos := popcount(n.bitmap & (bit - 1))
	switch v := n.nodes[pos].(type) {
	case entry[K, V]:
		if v.hash == hash && kr.Equal(v.key, key) {
			return n.without(pos, bit), true
		}
		return n, false
	case *node[K, V]:
		child, removed := v.remove(kr, hash, key, shift+bits)
		if !removed {
			return n, false
		}
		if len(child.nodes) == 0 {
			return n.without(pos, bit), true
		}
		c := n.clone()
		// Pull a lone leaf back up.
		if e, ok := child.nodes[0].(entry[K, V]); ok && len(child.nodes) == 1 {
			c.nodes[pos] = e
		} else {
			c.nodes[pos] = child
		}
		return c, true
	}
	return n, false
}

func (n *node[K, V]) collect(items *[]Entry[K, V]) {
	for _, nd := range n.nodes {
		switch v := nd.(type) {
		case entry[K, V]:
			*items = append(*items, Entry[K, V]{Key: v.key, Value: v.value})
		case *node[K, V]:
			v.collect(items)
		}
	}
}

// popcount counts set bits
func popcount(x uint32) int {
	x = x - ((x >> 1) & 0x55555555)
	x = (x & 0x33333333) + ((x >> 2) & 0x33333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f
	x = x + (x >> 8)
	x = x + (x >> 16)
	return int(x & 0x3f)
}
