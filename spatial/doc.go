// SPDX-License-Identifier: EPL-2.0

// Package spatial holds the geometry of the room: source and receiver
// positions, the distance attenuation model, and the Store that the input
// layer writes positions into.
//
// ComputeGain maps a pair of positions to a linear gain of 1/(1+d²), where
// d is the Euclidean distance between them:
//
//	g := spatial.ComputeGain(
//		spatial.Position3D{X: 1, Y: 0.5, Z: 1},
//		spatial.Position3D{X: -1, Y: 0.5, Z: -1},
//	) // 0.1111
//
// Store serialises writes. Every subscriber sees the notification for one
// write before the next write is applied, so a listener that derives a gain
// from the positions can never apply a stale value after a newer one.
package spatial
