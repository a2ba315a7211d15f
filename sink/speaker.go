// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/ik5/audroom/audio"
)

// Speaker plays through the default output device. There can be only one
// per process since beep's speaker is global.
type Speaker struct {
	rate  beep.SampleRate
	mixer *beep.Mixer

	mu     sync.Mutex
	closed bool
}

// NewSpeaker opens the device at rate with a buffer of the given latency.
func NewSpeaker(rate int, latency time.Duration) (*Speaker, error) {
	sr := beep.SampleRate(rate)
	if err := speaker.Init(sr, sr.N(latency)); err != nil {
		return nil, fmt.Errorf("speaker: %w", err)
	}

	s := &Speaker{rate: sr, mixer: &beep.Mixer{}}
	speaker.Play(s.mixer)
	return s, nil
}

func (s *Speaker) Play(src audio.Source) error {
	c, err := conform(src, int(s.rate), 2)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("speaker: closed")
	}

	speaker.Lock()
	s.mixer.Clear()
	s.mixer.Add(newStreamer(c))
	speaker.Unlock()
	return nil
}

// Halt silences the device. The previous source is not read again.
func (s *Speaker) Halt() {
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}

func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.Halt()
	speaker.Close()
	return nil
}

// streamer adapts a stereo audio.Source to beep.Streamer.
type streamer struct {
	src audio.Source
	buf []float32
	err error
}

func newStreamer(src audio.Source) *streamer {
	return &streamer{src: src}
}

func (s *streamer) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}

	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	buf := s.buf[:need]

	filled := 0
	for filled < need {
		n, err := s.src.ReadSamples(buf[filled:])
		filled += n
		if err != nil {
			s.err = err
			break
		}
		if n == 0 {
			break
		}
	}

	frames := filled / 2
	for i := range frames {
		samples[i][0] = float64(buf[2*i])
		samples[i][1] = float64(buf[2*i+1])
	}
	if frames == 0 && s.err != nil {
		return 0, false
	}
	return frames, true
}

func (s *streamer) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
