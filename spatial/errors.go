// SPDX-License-Identifier: EPL-2.0

package spatial

import "errors"

var ErrNotFinite = errors.New("position is not finite")
