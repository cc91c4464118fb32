//go:build linux || darwin || freebsd || netbsd || openbsd

package phys

import "golang.org/x/sys/unix"

func allocate(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func releaseMem(data []byte) error {
	return unix.Munmap(data)
}
