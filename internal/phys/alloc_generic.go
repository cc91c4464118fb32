//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package phys

import "unsafe"

// allocate over-allocates from the Go heap and trims to a page boundary.
func allocate(size int) ([]byte, error) {
	buf := make([]byte, size+PageSize)
	skip := (PageSize - int(uintptr(unsafe.Pointer(unsafe.SliceData(buf)))&(PageSize-1))) & (PageSize - 1)
	return buf[skip : skip+size : skip+size], nil
}

func releaseMem([]byte) error {
	return nil
}
