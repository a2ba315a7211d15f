// SPDX-License-Identifier: EPL-2.0

package spatial

// ComputeGain returns 1/(1+d²) for the distance d between source and
// receiver. The result is exactly 1 when the points coincide, symmetric in
// its arguments, and falls toward zero without reaching it as d grows.
func ComputeGain(source, receiver Position3D) float64 {
	dx := source.X - receiver.X
	dy := source.Y - receiver.Y
	dz := source.Z - receiver.Z
	return 1 / (1 + dx*dx + dy*dy + dz*dz)
}
