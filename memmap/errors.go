package memmap

import "errors"

var (
	ErrTooManyEntries = errors.New("too many memory map entries")
)
