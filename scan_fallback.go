//go:build !(goexperiment.simd && amd64)

package csvflow

import "golang.org/x/sys/cpu"

// This file provides the scanner's (C1) portable path, compiled whenever the
// AVX-512 archsimd path in scan_simd.go is not: any non-amd64 target or an
// amd64 target built without GOEXPERIMENT=simd. A caller that set
// UseSIMDIfAvailable=false gets its byte-at-a-time loop. It uses
// golang.org/x/sys/cpu feature checks to gate a wider word-at-a-time scan over a byte-at-a-time one, and the
// classic SWAR ("SIMD within a register") trick for locating a zero byte
// within a machine word without per-byte branching.

const wordHasWiderScan = true

// hasWideWordSupport reports whether the host benefits from the SWAR batch
// path below; on amd64 this is effectively always true once SSE2 baseline
// is assumed, but the cpu.X86 check confirms capability before committing
// to the faster code path.
func hasWideWordSupport() bool {
	return cpu.X86.HasSSE42 || cpu.X86.HasAVX2
}

const swarWord = 0x0101010101010101

// containsZeroByte reports whether any byte within w is zero, using the
// standard SWAR haszero trick.
func containsZeroByte(w uint64) bool {
	return (w-swarWord)&^w&(swarWord*0x80) != 0
}

// indexTerminator returns the offset of the first occurrence in data of
// delim, '\n', '\r', or (when stopAtQuote) quote, scanning a machine word at
// a time when data is long enough to benefit and falling back to a
// byte-at-a-time scan for the tail. Returns -1 if none is found.
func indexTerminator(data []byte, delim, quote byte, stopAtQuote, useSIMD bool) int {
	if useSIMD && hasWideWordSupport() && len(data) >= 8 {
		if idx := indexTerminatorSWAR(data, delim, quote, stopAtQuote); idx >= 0 {
			return idx
		}
		aligned := len(data) - len(data)%8
		return indexTerminatorScalar(data[aligned:], delim, quote, stopAtQuote, aligned)
	}
	return indexTerminatorScalar(data, delim, quote, stopAtQuote, 0)
}

func indexTerminatorSWAR(data []byte, delim, quote byte, stopAtQuote bool) int {
	n := len(data) - len(data)%8
	for i := 0; i < n; i += 8 {
		w := le64(data[i:])
		if containsZeroByte(xorMask(w, delim)) ||
			containsZeroByte(xorMask(w, '\n')) ||
			containsZeroByte(xorMask(w, '\r')) ||
			(stopAtQuote && containsZeroByte(xorMask(w, quote))) {
			for j := 0; j < 8; j++ {
				c := data[i+j]
				if c == delim || c == '\n' || c == '\r' || (stopAtQuote && c == quote) {
					return i + j
				}
			}
		}
	}
	return -1
}

func indexTerminatorScalar(data []byte, delim, quote byte, stopAtQuote bool, base int) int {
	for i, c := range data {
		if c == delim || c == '\n' || c == '\r' || (stopAtQuote && c == quote) {
			return base + i
		}
	}
	return -1
}

func xorMask(w uint64, b byte) uint64 {
	rep := uint64(b) * swarWord
	return w ^ rep
}

func le64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
