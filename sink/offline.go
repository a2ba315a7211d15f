// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audroom/audio"
)

// Offline is a sink with no clock: audio advances only when Pull is called.
type Offline struct {
	rate     int
	channels int

	mu    sync.Mutex
	src   audio.Source
	plays int
	err   error
}

func NewOffline(rate, channels int) (*Offline, error) {
	if rate <= 0 || (channels != 1 && channels != 2) {
		return nil, fmt.Errorf("%w: %d channels @ %d Hz", ErrUnsupportedLayout, channels, rate)
	}
	return &Offline{rate: rate, channels: channels}, nil
}

func (o *Offline) SampleRate() int { return o.rate }
func (o *Offline) Channels() int   { return o.channels }

func (o *Offline) Play(src audio.Source) error {
	c, err := conform(src, o.rate, o.channels)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.src = c
	o.plays++
	o.err = nil
	return nil
}

func (o *Offline) Halt() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.src = nil
}

// Playing reports whether a source is attached and has not run out.
func (o *Offline) Playing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.src != nil
}

// Plays counts the calls to Play.
func (o *Offline) Plays() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.plays
}

// Err is the error that ended the last source, if any.
func (o *Offline) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.err
}

// Pull fills dst with interleaved output. Whatever the source does not
// provide is silence, so dst is always filled completely.
func (o *Offline) Pull(dst []float32) {
	o.mu.Lock()
	defer o.mu.Unlock()

	filled := 0
	for o.src != nil && filled < len(dst) {
		n, err := o.src.ReadSamples(dst[filled:])
		filled += n
		if err != nil {
			if err != io.EOF {
				o.err = err
			}
			o.src = nil
		} else if n == 0 {
			break
		}
	}
	clear(dst[filled:])
}
