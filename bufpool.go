package csvflow

import "sync"

// scanScratch holds the reusable, pre-sized working storage that backs one
// in-flight row parse: the ends-only column table plus the parallel
// quote/escape bookkeeping parseRow needs while scanning. Pooling it
// amortises allocation across readers: each reader rents one when it is
// created and returns it on Close.
type scanScratch struct {
	ends     []int32
	quoteEnd []int32
	escaped  []bool
}

var scratchPool = sync.Pool{
	New: func() any { return &scanScratch{} },
}

func getScratch() *scanScratch {
	s := scratchPool.Get().(*scanScratch)
	s.ends = s.ends[:0]
	s.quoteEnd = s.quoteEnd[:0]
	s.escaped = s.escaped[:0]
	return s
}

func putScratch(s *scanScratch) {
	if cap(s.ends) > 1<<16 {
		// don't let one pathologically wide row keep a huge buffer alive
		s.ends = nil
		s.quoteEnd = nil
		s.escaped = nil
	}
	scratchPool.Put(s)
}

var ioBufPool = sync.Pool{
	New: func() any { b := make([]byte, 0, 64*1024); return &b },
}

// getBuf rents a []byte from the pool with its capacity set to exactly size,
// so the requested size is the size the caller starts with.
func getBuf(size int) []byte {
	bp := ioBufPool.Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, 0, size)
	}
	return b[:0:size]
}

// putBuf returns b to the pool. Pathologically large buffers (grown to
// satisfy a single oversized row) are dropped instead of pooled.
func putBuf(b []byte) {
	if cap(b) > 1<<20 {
		return
	}
	b = b[:0]
	ioBufPool.Put(&b)
}
