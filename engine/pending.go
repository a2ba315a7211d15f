// SPDX-License-Identifier: EPL-2.0

package engine

import "context"

// Pending tracks one SelectPreset request.
type Pending struct {
	Index int

	done chan struct{}
	err  error
}

func newPending(index int) *Pending {
	return &Pending{Index: index, done: make(chan struct{})}
}

func (p *Pending) finish(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the request is resolved.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err is the outcome; only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the request resolves or ctx ends. It returns nil when
// the preset is playing, ErrSuperseded when a newer request replaced it, or
// the load error.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
