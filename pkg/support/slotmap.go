package support

// Key is the constraint for arena handles. A handle is a dense integer
// with the maximum value reserved as the none sentinel; declaring
// `type Block uint32` is all an entity needs to key a map.
type Key interface {
	~uint16 | ~uint32
}

// None returns the reserved sentinel for a handle type.
func None[K Key]() K {
	var zero K
	return ^zero
}

// IsNone reports whether k is the sentinel value.
func IsNone[K Key](k K) bool {
	return k == None[K]()
}

type slot[V any] struct {
	value V
	live  bool
}

// PrimaryMap is dense append-only storage returning stable handles.
// Freed slots are recycled by Insert. Indexing with a key that was
// never issued by this map, or whose slot was freed, is a programmer
// error and panics.
type PrimaryMap[K Key, V any] struct {
	slots []slot[V]
	free  []K
	count int
}

// NewPrimaryMap returns an empty map.
func NewPrimaryMap[K Key, V any]() *PrimaryMap[K, V] {
	return &PrimaryMap[K, V]{}
}

// Insert stores v and returns its handle, reusing a freed slot if one
// exists.
func (m *PrimaryMap[K, V]) Insert(v V) K {
	m.count++
	if n := len(m.free); n > 0 {
		k := m.free[n-1]
		m.free = m.free[:n-1]
		m.slots[int(k)] = slot[V]{value: v, live: true}
		return k
	}
	m.slots = append(m.slots, slot[V]{value: v, live: true})
	return K(len(m.slots) - 1)
}

// Get returns a pointer to the value stored under k.
func (m *PrimaryMap[K, V]) Get(k K) *V {
	i := int(k)
	if i >= len(m.slots) || !m.slots[i].live {
		panic("support: invalid primary map key")
	}
	return &m.slots[i].value
}

// Remove frees the slot under k for reuse.
func (m *PrimaryMap[K, V]) Remove(k K) {
	i := int(k)
	if i >= len(m.slots) || !m.slots[i].live {
		panic("support: invalid primary map key")
	}
	var zero V
	m.slots[i] = slot[V]{value: zero}
	m.free = append(m.free, k)
	m.count--
}

// Len reports the number of live entries.
func (m *PrimaryMap[K, V]) Len() int {
	return m.count
}

// Cap reports the size of the key space (including freed slots).
// Secondary maps must be sized to at least this before indexing.
func (m *PrimaryMap[K, V]) Cap() int {
	return len(m.slots)
}

// ForEach calls f for every live entry in ascending key order.
func (m *PrimaryMap[K, V]) ForEach(f func(k K, v *V)) {
	for i := range m.slots {
		if m.slots[i].live {
			f(K(i), &m.slots[i].value)
		}
	}
}

// SecondaryMap associates auxiliary data with handles issued by a
// primary map. Indexing out of bounds panics; Insert grows the map.
type SecondaryMap[K Key, V any] struct {
	values []V
}

// NewSecondaryMap returns a map of size zero-valued entries.
func NewSecondaryMap[K Key, V any](size int) *SecondaryMap[K, V] {
	return &SecondaryMap[K, V]{values: make([]V, size)}
}

// NewSecondaryMapFunc returns a map whose entries are produced by fill.
func NewSecondaryMapFunc[K Key, V any](size int, fill func() V) *SecondaryMap[K, V] {
	m := &SecondaryMap[K, V]{values: make([]V, size)}
	for i := range m.values {
		m.values[i] = fill()
	}
	return m
}

// Get returns a pointer to the entry under k.
func (m *SecondaryMap[K, V]) Get(k K) *V {
	if int(k) >= len(m.values) {
		panic("support: secondary map key out of range")
	}
	return &m.values[int(k)]
}

// Set stores v under k.
func (m *SecondaryMap[K, V]) Set(k K, v V) {
	if int(k) >= len(m.values) {
		panic("support: secondary map key out of range")
	}
	m.values[int(k)] = v
}

// Insert stores v under k, growing the map with zero values as needed.
func (m *SecondaryMap[K, V]) Insert(k K, v V) {
	for int(k) >= len(m.values) {
		var zero V
		m.values = append(m.values, zero)
	}
	m.values[int(k)] = v
}

// Len reports the map's size.
func (m *SecondaryMap[K, V]) Len() int {
	return len(m.values)
}
