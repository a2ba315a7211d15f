// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedBitDepth indicates a sample size other than 8, 16, 24 or 32 bits
	ErrUnsupportedBitDepth = errors.New("only 8, 16, 24 and 32-bit AIFF is supported")

	// ErrUnsupportedAiffLayout indicates a missing or unusable COMM chunk
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
