package part

import "errors"

var (
	ErrShortSector  = errors.New("boot sector too short")
	ErrBadSignature = errors.New("boot sector signature missing")
)
