package emulator

import (
	"errors"
	"fmt"
)

var (
	ErrArchUnsupported = errors.New("architecture unsupported")
	ErrArchMismatch    = errors.New("architecture mismatch")
	ErrArgumentInvalid = errors.New("argument invalid")
	ErrMemUnmapped     = errors.New("memory unmapped")
	ErrMemProtected    = errors.New("memory protection violated")
	ErrMemOverlap      = errors.New("memory region overlap")
	ErrEmulatorClosed  = errors.New("emulator closed")
)

// AccessError reports a guest memory access that could not be served.
type AccessError struct {
	Prot MemProt
	Addr uint64
	Size uint64
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("[InvalidMemory] %v, access: %v, addr: %08X, size: %d", e.Err, e.Prot, e.Addr, e.Size)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func NewAccessError(prot MemProt, addr, size uint64, err error) error {
	return &AccessError{Prot: prot, Addr: addr, Size: size, Err: err}
}
