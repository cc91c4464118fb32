package loader

import "errors"

var (
	ErrRegionInvalid = errors.New("region invalid")
)
