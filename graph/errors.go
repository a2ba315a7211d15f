// SPDX-License-Identifier: EPL-2.0

package graph

import "errors"

var (
	// ErrAssetLoad wraps every failure to fetch or decode a track or an
	// impulse response.
	ErrAssetLoad = errors.New("asset load failed")
	// ErrNotConnected means the pipeline id was superseded or torn down.
	ErrNotConnected = errors.New("pipeline not connected")
	// ErrInvalidState is a call the controller cannot serve in its current
	// state, such as Start before any Connect.
	ErrInvalidState = errors.New("invalid pipeline state")
)
