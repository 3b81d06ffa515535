//go:build goexperiment.simd && amd64

package csvflow

import (
	"math/bits"
	"simd/archsimd"

	"golang.org/x/sys/cpu"
)

// This file is the scanner's (C1) vectorised fast path: 32-byte lanes are
// broadcast-compared against each of the row parser's configured sentinel
// bytes via archsimd, and the resulting per-lane equality masks are
// combined into a single bitmask per lane, driven by the Options-configured
// delimiter and quote bytes rather than a hardcoded comma/quote/CR/LF quartet.
var useAVX512 = cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL

const simdLane = 32

// indexTerminator returns the offset of the first occurrence in data of
// delim, '\n', '\r', or (when stopAtQuote) quote. It dispatches to the
// AVX-512 lane scan when the host supports it and the slice is long enough
// to amortise setup cost, otherwise it falls back to the portable scalar
// scan (shared signature with scan_fallback.go's implementation, kept under
// a distinct name here to avoid a build-tag collision).
func indexTerminator(data []byte, delim, quote byte, stopAtQuote, useSIMD bool) int {
	if !useSIMD || !useAVX512 || len(data) < simdLane {
		return indexTerminatorScalarSIMDBuild(data, delim, quote, stopAtQuote)
	}

	delimVec := archsimd.BroadcastInt8x32(int8(delim))
	nlVec := archsimd.BroadcastInt8x32(int8('\n'))
	crVec := archsimd.BroadcastInt8x32(int8('\r'))
	quoteVec := archsimd.BroadcastInt8x32(int8(quote))

	i := 0
	for ; i+simdLane <= len(data); i += simdLane {
		lane := archsimd.LoadInt8x32(data[i : i+simdLane])
		mask := lane.Equal(delimVec).ToBits() | lane.Equal(nlVec).ToBits() | lane.Equal(crVec).ToBits()
		if stopAtQuote {
			mask |= lane.Equal(quoteVec).ToBits()
		}
		if mask != 0 {
			return i + bits.TrailingZeros32(mask)
		}
	}
	if rel := indexTerminatorScalarSIMDBuild(data[i:], delim, quote, stopAtQuote); rel >= 0 {
		return i + rel
	}
	return -1
}

func indexTerminatorScalarSIMDBuild(data []byte, delim, quote byte, stopAtQuote bool) int {
	for i, c := range data {
		if c == delim || c == '\n' || c == '\r' || (stopAtQuote && c == quote) {
			return i
		}
	}
	return -1
}
