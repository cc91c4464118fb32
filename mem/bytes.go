package mem

import "unsafe"

func sliceData(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

// CopyBytes copies the first n bytes of src into dst. n must not exceed
// either length, and the backing arrays must not overlap.
func CopyBytes(dst, src []byte, n int) []byte {
	Copy(sliceData(dst), sliceData(src), uintptr(n))
	return dst
}

// MoveBytes is CopyBytes for slices that may share a backing array.
func MoveBytes(dst, src []byte, n int) []byte {
	Move(sliceData(dst), sliceData(src), uintptr(n))
	return dst
}

// FillBytes sets the first n bytes of dst to the low byte of value.
func FillBytes(dst []byte, value int, n int) []byte {
	Fill(sliceData(dst), value, uintptr(n))
	return dst
}

// CompareBytes compares the first n bytes of a and b like Compare.
func CompareBytes(a, b []byte, n int) int {
	return Compare(sliceData(a), sliceData(b), uintptr(n))
}
