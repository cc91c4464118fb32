package boot

import "errors"

var (
	ErrRegionMissing     = errors.New("required region not mapped")
	ErrBootSectorInvalid = errors.New("boot sector invalid")
)
