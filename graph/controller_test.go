// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audroom/audio"
	"github.com/ik5/audroom/sink"
)

type fakeLoader struct {
	mu     sync.Mutex
	assets map[string]*audio.Buffer
	calls  map[string]int
	gate   chan struct{}
}

func newFakeLoader(assets map[string]*audio.Buffer) *fakeLoader {
	return &fakeLoader{assets: assets, calls: make(map[string]int)}
}

var errMissing = errors.New("missing asset")

func (l *fakeLoader) Load(ctx context.Context, uri string) (*audio.Buffer, error) {
	l.mu.Lock()
	l.calls[uri]++
	gate := l.gate
	l.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if buf, ok := l.assets[uri]; ok {
		return buf, nil
	}
	return nil, errMissing
}

func (l *fakeLoader) Calls(uri string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[uri]
}

func constBuffer(t *testing.T, rate, frames int, v float32) *audio.Buffer {
	t.Helper()

	data := make([]float32, frames)
	for i := range data {
		data[i] = v
	}
	buf, err := audio.NewBuffer(rate, 1, data)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func newTestController(t *testing.T) (*Controller, *sink.Offline, *fakeLoader) {
	t.Helper()

	out, err := sink.NewOffline(8000, 1)
	if err != nil {
		t.Fatal(err)
	}
	loader := newFakeLoader(map[string]*audio.Buffer{
		"track.wav": constBuffer(t, 8000, 8000, 0.5),
		"ir_144.wav": func() *audio.Buffer {
			b, _ := audio.NewBuffer(8000, 1, []float32{1})
			return b
		}(),
	})
	c := NewController(loader, out, Options{RampWindow: 10 * time.Millisecond})
	return c, out, loader
}

func TestController_LoadTrackIsCached(t *testing.T) {
	t.Parallel()

	c, _, loader := newTestController(t)
	ctx := context.Background()

	a, err := c.LoadTrack(ctx, "track.wav")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.LoadTrack(ctx, "track.wav")
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Error("LoadTrack returned different buffers for the same uri")
	}
	if n := loader.Calls("track.wav"); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestController_LoadErrorsAreAssetLoad(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestController(t)

	_, err := c.LoadImpulseResponse(context.Background(), "ir_944.wav")
	if !errors.Is(err, ErrAssetLoad) || !errors.Is(err, errMissing) {
		t.Errorf("LoadImpulseResponse() error = %v, want ErrAssetLoad wrapping the cause", err)
	}
	if c.State() != Idle {
		t.Errorf("State() = %v after a failed load, want idle", c.State())
	}
}

func TestController_LoadingState(t *testing.T) {
	t.Parallel()

	c, _, loader := newTestController(t)
	loader.gate = make(chan struct{})

	done := make(chan error)
	go func() {
		_, err := c.LoadImpulseResponse(context.Background(), "ir_144.wav")
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.State() != Loading {
		if time.Now().After(deadline) {
			t.Fatal("controller never reported Loading")
		}
		time.Sleep(time.Millisecond)
	}

	close(loader.gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestController_Lifecycle(t *testing.T) {
	t.Parallel()

	c, out, _ := newTestController(t)
	track, _ := c.LoadTrack(context.Background(), "track.wav")

	id, err := c.Connect(track, Direct{Gain: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if c.State() != Connected {
		t.Fatalf("State() = %v, want connected", c.State())
	}
	if out.Playing() {
		t.Fatal("sink playing before Start")
	}

	if err := c.Start(id); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(id); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if out.Plays() != 1 {
		t.Errorf("sink Play called %d times, want 1", out.Plays())
	}
	if c.State() != Playing {
		t.Fatalf("State() = %v, want playing", c.State())
	}

	dst := make([]float32, 16)
	out.Pull(dst)
	if math.Abs(float64(dst[0])-0.25) > 1e-6 {
		t.Errorf("first sample = %v, want 0.5 * 0.5", dst[0])
	}

	if err := c.Stop(id); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(id); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
	if out.Playing() || c.State() != Stopped {
		t.Fatalf("after Stop: sink playing %v, state %v", out.Playing(), c.State())
	}

	if err := c.Start(id); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	if !out.Playing() || out.Plays() != 2 {
		t.Errorf("restart: playing %v, plays %d", out.Playing(), out.Plays())
	}

	c.Teardown(id)
	c.Teardown(id)
	if out.Playing() || c.State() != Idle {
		t.Errorf("after Teardown: sink playing %v, state %v", out.Playing(), c.State())
	}
	if _, ok := c.Active(); ok {
		t.Error("Active() reports a pipeline after Teardown")
	}
	if err := c.Start(id); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Start() after Teardown error = %v, want ErrNotConnected", err)
	}
}

func TestController_StartBeforeConnect(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestController(t)

	if err := c.Start(PipelineID{}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Start() error = %v, want ErrInvalidState", err)
	}
	if err := c.SetGain(PipelineID{}, 1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SetGain() error = %v, want ErrInvalidState", err)
	}
	if _, err := c.Connect(nil, Direct{Gain: 1}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Connect(nil) error = %v, want ErrInvalidState", err)
	}
}

func TestController_ConnectReplacesPipeline(t *testing.T) {
	t.Parallel()

	c, out, _ := newTestController(t)
	ctx := context.Background()
	track, _ := c.LoadTrack(ctx, "track.wav")
	ir, _ := c.LoadImpulseResponse(ctx, "ir_144.wav")

	first, err := c.Connect(track, Direct{Gain: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(first); err != nil {
		t.Fatal(err)
	}

	second, err := c.Connect(track, Convolved{IR: ir, Gain: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("Connect reused the pipeline id")
	}
	if out.Playing() {
		t.Error("old pipeline still audible after a new Connect")
	}

	for name, op := range map[string]func() error{
		"Start":   func() error { return c.Start(first) },
		"Stop":    func() error { return c.Stop(first) },
		"SetGain": func() error { return c.SetGain(first, 0.1) },
	} {
		if err := op(); !errors.Is(err, ErrNotConnected) {
			t.Errorf("%s(superseded) error = %v, want ErrNotConnected", name, err)
		}
	}

	c.Teardown(first)
	info, ok := c.Active()
	if !ok || info.ID != second || info.Mode != "convolved" || info.State != Connected {
		t.Errorf("Active() = %+v, %v; want the convolved pipeline, connected", info, ok)
	}
	if math.Abs(info.Gain-0.2) > 1e-9 {
		t.Errorf("Active().Gain = %v, want 0.2", info.Gain)
	}
}

func TestController_ConvolvedPlaysThroughIR(t *testing.T) {
	t.Parallel()

	c, out, _ := newTestController(t)
	track, _ := c.LoadTrack(context.Background(), "track.wav")
	delayed, _ := audio.NewBuffer(8000, 1, []float32{0, 0, 1})

	id, err := c.Connect(track, Convolved{IR: delayed, Gain: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(id); err != nil {
		t.Fatal(err)
	}

	dst := make([]float32, 8)
	out.Pull(dst)
	if math.Abs(float64(dst[0])) > 1e-5 || math.Abs(float64(dst[1])) > 1e-5 {
		t.Errorf("dst[:2] = %v, want the two-sample delay of the impulse response", dst[:2])
	}
	if math.Abs(float64(dst[4])-0.5) > 1e-4 {
		t.Errorf("dst[4] = %v, want 0.5", dst[4])
	}
}

func TestController_ConvolvedRequiresIR(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestController(t)
	track, _ := c.LoadTrack(context.Background(), "track.wav")

	if _, err := c.Connect(track, Convolved{Gain: 1}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Connect() error = %v, want ErrInvalidState", err)
	}
	if _, err := c.Connect(track, nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Connect(nil mode) error = %v, want ErrInvalidState", err)
	}
	if c.State() != Idle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestController_SetGainRamps(t *testing.T) {
	t.Parallel()

	c, out, _ := newTestController(t)
	track, _ := c.LoadTrack(context.Background(), "track.wav")

	id, _ := c.Connect(track, Direct{Gain: 0.9})
	if err := c.Start(id); err != nil {
		t.Fatal(err)
	}
	if err := c.SetGain(id, 0.05); err != nil {
		t.Fatal(err)
	}

	// 10 ms at 8 kHz.
	const ramp = 80
	dst := make([]float32, ramp+20)
	out.Pull(dst)

	prev := float32(0.9 * 0.5)
	for i, v := range dst {
		if v > prev+1e-7 {
			t.Fatalf("sample %d = %v rose above %v", i, v, prev)
		}
		if v < 0.05*0.5-1e-6 {
			t.Fatalf("sample %d = %v overshot the target", i, v)
		}
		prev = v
	}
	if math.Abs(float64(dst[ramp+10])-0.025) > 1e-6 {
		t.Errorf("settled sample = %v, want 0.025", dst[ramp+10])
	}

	info, _ := c.Active()
	if info.Target != 0.05 || info.Gain != 0.05 {
		t.Errorf("Active() gain %v target %v, want both 0.05", info.Gain, info.Target)
	}
}

func TestController_RestartKeepsLatestGain(t *testing.T) {
	t.Parallel()

	c, out, _ := newTestController(t)
	track, _ := c.LoadTrack(context.Background(), "track.wav")

	id, _ := c.Connect(track, Direct{Gain: 1})
	_ = c.Start(id)
	_ = c.SetGain(id, 0.4)
	_ = c.Stop(id)
	_ = c.Start(id)

	dst := make([]float32, 4)
	out.Pull(dst)
	if math.Abs(float64(dst[0])-0.2) > 1e-6 {
		t.Errorf("first sample after restart = %v, want 0.4 * 0.5", dst[0])
	}
}

func TestModeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode PipelineMode
		want string
	}{
		{Direct{Gain: 1}, "direct"},
		{Convolved{}, "convolved"},
		{nil, "none"},
	}
	for _, tt := range tests {
		if got := ModeName(tt.mode); got != tt.want {
			t.Errorf("ModeName(%#v) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	want := map[State]string{Idle: "idle", Loading: "loading", Connected: "connected", Playing: "playing", Stopped: "stopped", State(9): "State(9)"}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), w)
		}
	}
}

func TestController_UnusableIRKeepsPipeline(t *testing.T) {
	t.Parallel()

	c, out, _ := newTestController(t)
	track, _ := c.LoadTrack(context.Background(), "track.wav")

	first, err := c.Connect(track, Direct{Gain: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(first); err != nil {
		t.Fatal(err)
	}

	empty, err := audio.NewBuffer(8000, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Connect(track, Convolved{IR: empty, Gain: 1})
	if !errors.Is(err, ErrAssetLoad) || !errors.Is(err, audio.ErrEmptyBuffer) {
		t.Fatalf("Connect(empty IR) error = %v, want ErrAssetLoad wrapping ErrEmptyBuffer", err)
	}

	info, ok := c.Active()
	if !ok || info.ID != first || info.State != Playing {
		t.Errorf("Active() = %+v, %v; want the direct pipeline still playing", info, ok)
	}
	if !out.Playing() || out.Plays() != 1 {
		t.Errorf("sink playing %v, plays %d; want the original source untouched", out.Playing(), out.Plays())
	}
}

func TestController_FinishedTrackStops(t *testing.T) {
	t.Parallel()

	out, err := sink.NewOffline(8000, 1)
	if err != nil {
		t.Fatal(err)
	}
	c := NewController(newFakeLoader(nil), out, Options{})
	track := constBuffer(t, 8000, 100, 0.5)

	id, err := c.Connect(track, Direct{Gain: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(id); err != nil {
		t.Fatal(err)
	}

	out.Pull(make([]float32, 1000))
	if out.Playing() {
		t.Fatal("sink still playing past the end of the track")
	}
	if got := c.State(); got != Stopped {
		t.Fatalf("State() after the track ended = %v, want stopped", got)
	}
	if info, ok := c.Active(); !ok || info.State != Stopped {
		t.Errorf("Active() = %+v, %v; want a stopped pipeline", info, ok)
	}

	if err := c.Start(id); err != nil {
		t.Fatalf("Start() after the end error = %v", err)
	}
	if !out.Playing() || out.Plays() != 2 {
		t.Fatalf("replay: sink playing %v, plays %d", out.Playing(), out.Plays())
	}

	dst := make([]float32, 16)
	out.Pull(dst)
	if dst[0] != 0.5 {
		t.Errorf("first replayed sample = %v, want 0.5", dst[0])
	}
}
