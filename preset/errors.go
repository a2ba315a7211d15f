// SPDX-License-Identifier: EPL-2.0

package preset

import "errors"

var (
	ErrIndexOutOfRange = errors.New("preset index out of range")
	ErrInvalidCatalog  = errors.New("invalid preset catalog")
)
