// Package mem provides the memory primitives a freestanding stage needs:
// copy, overlap-safe move, fill and compare over raw address ranges.
//
// None of them check bounds, allocate or fail. The caller owns both ranges and
// guarantees they are valid for the whole length.
package mem

import "unsafe"

const wordSize = 4

func wordAligned(p unsafe.Pointer) bool {
	return uintptr(p)&(wordSize-1) == 0
}

// Copy copies n bytes from src to dst in ascending address order and returns
// dst. The ranges must not overlap.
//
//go:nosplit
func Copy(dst, src unsafe.Pointer, n uintptr) unsafe.Pointer {
	if wordAligned(dst) && wordAligned(src) && n&(wordSize-1) == 0 {
		words := n / wordSize
		for i := uintptr(0); i < words; i++ {
			*(*uint32)(unsafe.Add(dst, i*wordSize)) = *(*uint32)(unsafe.Add(src, i*wordSize))
		}
		return dst
	}
	for i := uintptr(0); i < n; i++ {
		*(*byte)(unsafe.Add(dst, i)) = *(*byte)(unsafe.Add(src, i))
	}
	return dst
}

// Move copies n bytes from src to dst and returns dst. The ranges may overlap.
//
//go:nosplit
func Move(dst, src unsafe.Pointer, n uintptr) unsafe.Pointer {
	if uintptr(dst) < uintptr(src) {
		return Copy(dst, src, n)
	}
	if wordAligned(dst) && wordAligned(src) && n&(wordSize-1) == 0 {
		for i := n / wordSize; i > 0; i-- {
			off := (i - 1) * wordSize
			*(*uint32)(unsafe.Add(dst, off)) = *(*uint32)(unsafe.Add(src, off))
		}
		return dst
	}
	for i := n; i > 0; i-- {
		*(*byte)(unsafe.Add(dst, i-1)) = *(*byte)(unsafe.Add(src, i-1))
	}
	return dst
}

// Fill sets n bytes at dst to the low byte of value and returns dst.
//
//go:nosplit
func Fill(dst unsafe.Pointer, value int, n uintptr) unsafe.Pointer {
	b := byte(value)
	if wordAligned(dst) && n&(wordSize-1) == 0 {
		w := uint32(b) * 0x01010101
		words := n / wordSize
		for i := uintptr(0); i < words; i++ {
			*(*uint32)(unsafe.Add(dst, i*wordSize)) = w
		}
		return dst
	}
	for i := uintptr(0); i < n; i++ {
		*(*byte)(unsafe.Add(dst, i)) = b
	}
	return dst
}

// Compare compares n bytes at a and b in ascending order. It returns 0 when
// they are equal, otherwise a[i] - b[i] for the first differing index i.
// Only the sign of a nonzero result is meaningful.
//
//go:nosplit
func Compare(a, b unsafe.Pointer, n uintptr) int {
	for i := uintptr(0); i < n; i++ {
		x := *(*byte)(unsafe.Add(a, i))
		y := *(*byte)(unsafe.Add(b, i))
		if x != y {
			return int(x) - int(y)
		}
	}
	return 0
}
