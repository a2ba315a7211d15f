// SPDX-License-Identifier: EPL-2.0

package asset

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("no decoder for file extension")
	ErrUnexpectedStatus  = errors.New("unexpected HTTP status")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
)

// Error reports a failed load together with the reference that was asked for.
type Error struct {
	URI string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("load %s: %v", e.URI, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
