package dispatch

// Dispatcher routes rows to a registered schema handle by the value of one
// discriminator column. It has three lookup tiers, cheapest first:
//
//  1. byteTable: a 256-entry array for single-ASCII-byte discriminators.
//  2. packed:    a map[Key]int for discriminators up to 8 bytes.
//  3. fallback:  a map[string]int for anything longer.
//
// A one-entry sticky cache elides the lookup entirely when consecutive rows
// share a discriminator, which is the common case for sorted or grouped
// input: a cheap equality check on the previous hit elides the tiered
// lookup on the hot path.
type Dispatcher struct {
	byteTable [256]int // 1-based schema index; 0 means "unregistered"
	packed    map[Key]int
	fallback  map[string]int
	schemas   []any

	stickyKey  string
	stickyIdx  int
	stickyHit  bool
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		packed:   make(map[Key]int),
		fallback: make(map[string]int),
	}
}

// Register associates discriminator (already case-folded by the caller via
// FoldString, if case-insensitivity is desired) with schema, returning the
// 0-based schema index assigned. Re-registering the same discriminator
// overwrites the previous schema.
func (d *Dispatcher) Register(discriminator string, schema any) int {
	d.schemas = append(d.schemas, schema)
	idx := len(d.schemas) - 1 // 0-based

	if len(discriminator) == 1 {
		d.byteTable[discriminator[0]] = idx + 1
		return idx
	}
	if key, ok := Pack([]byte(discriminator)); ok {
		d.packed[key] = idx + 1
		return idx
	}
	d.fallback[discriminator] = idx + 1
	return idx
}

// Lookup resolves discriminator to its registered schema. ok is false when
// no schema was registered for it.
func (d *Dispatcher) Lookup(discriminator string) (schema any, idx int, ok bool) {
	if d.stickyHit && d.stickyKey == discriminator {
		return d.schemas[d.stickyIdx], d.stickyIdx, true
	}

	var slot int
	switch {
	case len(discriminator) == 1:
		slot = d.byteTable[discriminator[0]]
	default:
		if key, packOK := Pack([]byte(discriminator)); packOK {
			slot = d.packed[key]
		} else {
			slot = d.fallback[discriminator]
		}
	}
	if slot == 0 {
		return nil, -1, false
	}

	idx = slot - 1
	d.stickyKey = discriminator
	d.stickyIdx = idx
	d.stickyHit = true
	return d.schemas[idx], idx, true
}

// LookupBytes is the zero-copy variant of Lookup for callers holding a raw
// column slice rather than an owned string; it only allocates a string when
// the sticky cache misses.
func (d *Dispatcher) LookupBytes(discriminator []byte) (schema any, idx int, ok bool) {
	if d.stickyHit && len(discriminator) == len(d.stickyKey) && string(discriminator) == d.stickyKey {
		return d.schemas[d.stickyIdx], d.stickyIdx, true
	}
	return d.Lookup(string(discriminator))
}

// Len reports how many schemas are registered.
func (d *Dispatcher) Len() int { return len(d.schemas) }
