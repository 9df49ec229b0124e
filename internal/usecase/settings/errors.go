package settings

import "errors"

var (
	// ErrUnknownKey indicates a setting name that the store does not define.
	ErrUnknownKey = errors.New("unknown setting key")
)
