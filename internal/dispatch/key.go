// Package dispatch implements the discriminator key (C5) and multi-schema
// dispatcher (C6): routing an incoming row to the typed binder registered
// for its discriminator column value via a packed-integer hash lookup with
// a sticky last-hit cache.
package dispatch

// Key is a packed representation of a discriminator value of up to 8 ASCII
// bytes, compared as two machine words instead of a string. Values longer
// than 8 bytes fold back to string comparison (see Dispatcher's fallback
// tier). Packing small fixed-width data into an integer makes equality a
// single CPU compare instead of a byte loop.
//
// data holds all 8 possible bytes little-endian, using the full 64 bits;
// length is carried in a separate field rather than stolen from data's top
// byte, since an 8-byte discriminator legitimately uses every bit of data
// and any in-band length tag would collide with that 8th byte.
type Key struct {
	data   uint64
	length uint8
}

const maxPackedLen = 8

// Pack folds ASCII A-Z to lowercase and packs up to 8 bytes of b little-endian
// into a Key. ok is false when b is empty or longer than 8 bytes; callers
// should fall back to string-keyed lookup in that case.
func Pack(b []byte) (key Key, ok bool) {
	if len(b) == 0 || len(b) > maxPackedLen {
		return Key{}, false
	}
	var k uint64
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		k |= uint64(c) << (8 * i)
	}
	return Key{data: k, length: uint8(len(b))}, true
}

// FoldString lower-cases s the same way Pack folds bytes, for use when
// building the string-keyed fallback tier.
func FoldString(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
