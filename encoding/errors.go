package encoding

import "errors"

var (
	ErrValueInvalid = errors.New("value must be a non-nil pointer")
)
