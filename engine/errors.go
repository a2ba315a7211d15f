// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrSuperseded resolves a Pending whose selection was replaced by a
	// newer request before it could take effect.
	ErrSuperseded = errors.New("preset selection superseded")
	ErrClosed     = errors.New("engine closed")
)
