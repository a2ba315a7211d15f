// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"fmt"
	"math"
)

// Position3D is a point in the room, in meters.
type Position3D struct {
	X, Y, Z float64
}

func (p Position3D) Distance(q Position3D) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (p Position3D) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// String renders the coordinates with two decimals, as shown in readouts.
func (p Position3D) String() string {
	return fmt.Sprintf("%.2f, %.2f, %.2f", p.X, p.Y, p.Z)
}

// Which selects one of the two markers in the room.
type Which int

const (
	Source Which = iota
	Receiver
)

func (w Which) String() string {
	switch w {
	case Source:
		return "source"
	case Receiver:
		return "receiver"
	default:
		return fmt.Sprintf("Which(%d)", int(w))
	}
}

// Positions is the pair the store holds.
type Positions struct {
	Source   Position3D
	Receiver Position3D
}

// Gain is ComputeGain applied to the pair.
func (p Positions) Gain() float64 {
	return ComputeGain(p.Source, p.Receiver)
}

func (p Positions) with(which Which, pos Position3D) Positions {
	if which == Receiver {
		p.Receiver = pos
	} else {
		p.Source = pos
	}
	return p
}
