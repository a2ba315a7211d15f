// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ik5/audroom"
	"github.com/ik5/audroom/engine"
	"github.com/ik5/audroom/graph"
	"github.com/ik5/audroom/sink"
	"github.com/ik5/audroom/spatial"
)

const (
	roomHalf   = 5.0 // the floor spans [-5, 5] m on x and z
	markerY    = 0.5
	nudgeStep  = 0.1
	deviceRate = 48000
	frameTime  = 33 * time.Millisecond
)

// rect is the floor's area on screen, in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(col, row int) bool {
	return col >= r.x && col < r.x+r.w && row >= r.y && row < r.y+r.h
}

// floorRect fits a square floor into the screen, leaving room for the
// readout. Cells are about twice as tall as wide.
func floorRect(screenW, screenH int) rect {
	h := min(screenH-7, (screenW-2)/2)
	h = max(h, 3)
	return rect{x: 1, y: 1, w: 2 * h, h: h}
}

// toFloor maps a cell to room coordinates; the top row is z = -5.
func (r rect) toFloor(col, row int) (x, z float64) {
	x = -roomHalf + 2*roomHalf*float64(col-r.x)/float64(max(r.w-1, 1))
	z = -roomHalf + 2*roomHalf*float64(row-r.y)/float64(max(r.h-1, 1))
	return clampRoom(x), clampRoom(z)
}

func (r rect) toCell(x, z float64) (col, row int) {
	col = r.x + int(math.Round((clampRoom(x)+roomHalf)/(2*roomHalf)*float64(r.w-1)))
	row = r.y + int(math.Round((clampRoom(z)+roomHalf)/(2*roomHalf)*float64(r.h-1)))
	return col, row
}

func clampRoom(v float64) float64 {
	return math.Max(-roomHalf, math.Min(roomHalf, v))
}

type selection struct {
	index int
	err   error
}

type ui struct {
	screen tcell.Screen
	eng    *engine.Engine
	floor  rect

	selected spatial.Which
	dragging bool
	status   string
	results  chan selection
}

func runPlay(args []string) error {
	var (
		opts    options
		latency time.Duration
	)

	fs := flag.NewFlagSet("play", flag.ExitOnError)
	opts.register(fs, "audroom.log")
	fs.DurationVar(&latency, "latency", 100*time.Millisecond, "output buffer length")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, closer, err := opts.logger()
	if err != nil {
		return err
	}
	defer closer.Close()

	cfg, roomOpts, err := opts.load(log)
	if err != nil {
		return err
	}
	roomOpts.Loop = true

	spk, err := sink.NewSpeaker(deviceRate, latency)
	if err != nil {
		return err
	}
	defer spk.Close()

	eng, err := audroom.New(cfg, spk, roomOpts)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	u := &ui{
		screen:  screen,
		eng:     eng,
		status:  "p play  s stop  0-4 presets  tab switch  q quit",
		results: make(chan selection, 4),
	}
	u.floor = floorRect(screen.Size())

	u.run(ctx)
	return nil
}

// pollEvents forwards screen events until the screen is finalized or quit
// is closed.
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, quit <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-quit:
			return
		}
	}
}

func (u *ui) run(ctx context.Context) {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go pollEvents(u.screen, events, quit)

	for {
		select {
		case ev := <-events:
			if !u.handle(ctx, ev) {
				return
			}
		case r := <-u.results:
			switch {
			case r.err == nil:
				u.status = fmt.Sprintf("preset %d playing", r.index)
			case errors.Is(r.err, engine.ErrSuperseded):
			default:
				u.status = fmt.Sprintf("preset %d failed: %v", r.index, r.err)
			}
		case un := <-u.eng.Unavailable():
			u.status = fmt.Sprintf("preset %d unavailable", un.Index)
		case <-ticker.C:
			u.draw()
		}
	}
}

func (u *ui) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return u.key(ctx, ev)

	case *tcell.EventMouse:
		col, row := ev.Position()
		switch {
		case ev.Buttons()&tcell.Button1 != 0:
			if !u.dragging {
				if !u.floor.contains(col, row) {
					return true
				}
				u.pick(col, row)
				u.dragging = true
			}
			x, z := u.floor.toFloor(col, row)
			u.move(spatial.Position3D{X: x, Y: markerY, Z: z})
		case ev.Buttons() == tcell.ButtonNone:
			u.dragging = false
		}

	case *tcell.EventResize:
		u.screen.Sync()
		u.floor = floorRect(u.screen.Size())
	}
	return true
}

func (u *ui) key(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		u.selected = 1 - u.selected
	case tcell.KeyLeft:
		u.nudge(-nudgeStep, 0)
	case tcell.KeyRight:
		u.nudge(nudgeStep, 0)
	case tcell.KeyUp:
		u.nudge(0, -nudgeStep)
	case tcell.KeyDown:
		u.nudge(0, nudgeStep)
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r == 'q':
			return false
		case r == 'p':
			u.report(u.eng.PlayDry(), "playing", "nothing to play yet")
		case r == 's':
			u.report(u.eng.Stop(), "stopped", "nothing to stop")
		case r >= '0' && r <= '9':
			u.selectPreset(ctx, int(r-'0'))
		}
	}
	return true
}

// pick selects the marker under the cursor, if any.
func (u *ui) pick(col, row int) {
	snap := u.eng.Snapshot()
	for _, w := range []spatial.Which{spatial.Source, spatial.Receiver} {
		p := snap.Positions.Source
		if w == spatial.Receiver {
			p = snap.Positions.Receiver
		}
		c, r := u.floor.toCell(p.X, p.Z)
		if r == row && c >= col-1 && c <= col+1 {
			u.selected = w
			return
		}
	}
}

func (u *ui) nudge(dx, dz float64) {
	p := u.current()
	p.X = clampRoom(p.X + dx)
	p.Z = clampRoom(p.Z + dz)
	u.move(p)
}

func (u *ui) current() spatial.Position3D {
	pos := u.eng.Snapshot().Positions
	if u.selected == spatial.Receiver {
		return pos.Receiver
	}
	return pos.Source
}

func (u *ui) move(p spatial.Position3D) {
	if err := u.eng.OnPositionChanged(u.selected, p); err != nil {
		u.status = err.Error()
	}
}

func (u *ui) selectPreset(ctx context.Context, index int) {
	pending, err := u.eng.SelectPreset(index)
	if err != nil {
		u.status = err.Error()
		return
	}
	u.status = fmt.Sprintf("loading preset %d", index)

	go func() {
		err := pending.Wait(ctx)
		select {
		case u.results <- selection{index: index, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (u *ui) report(err error, ok, invalid string) {
	switch {
	case err == nil:
		u.status = ok
	case errors.Is(err, graph.ErrInvalidState):
		u.status = invalid
	default:
		u.status = err.Error()
	}
}

var (
	styleFloor    = tcell.StyleDefault.Background(tcell.NewRGBColor(40, 40, 48))
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSource   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleReceiver = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleText     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

func (u *ui) draw() {
	s := u.screen
	s.Clear()

	f := u.floor
	for row := f.y; row < f.y+f.h; row++ {
		for col := f.x; col < f.x+f.w; col++ {
			s.SetContent(col, row, ' ', nil, styleFloor)
		}
	}
	for col := f.x - 1; col <= f.x+f.w; col++ {
		s.SetContent(col, f.y-1, '─', nil, styleBorder)
		s.SetContent(col, f.y+f.h, '─', nil, styleBorder)
	}
	for row := f.y; row < f.y+f.h; row++ {
		s.SetContent(f.x-1, row, '│', nil, styleBorder)
		s.SetContent(f.x+f.w, row, '│', nil, styleBorder)
	}

	snap := u.eng.Snapshot()
	u.marker(snap.Positions.Source, 'S', styleSource, u.selected == spatial.Source)
	u.marker(snap.Positions.Receiver, 'R', styleReceiver, u.selected == spatial.Receiver)

	preset := "-"
	if snap.Preset >= 0 {
		preset = fmt.Sprint(snap.Preset)
	}
	if snap.Selecting >= 0 {
		preset += fmt.Sprintf(" (loading %d)", snap.Selecting)
	}

	y := f.y + f.h + 1
	lines := []string{
		fmt.Sprintf("Source Position: %s", snap.Positions.Source),
		fmt.Sprintf("Receiver Position: %s", snap.Positions.Receiver),
		fmt.Sprintf("Gain: %.3f (applied %.3f)  State: %s  Mode: %s  Preset: %s",
			snap.Gain, snap.Applied, snap.State, snap.Mode, preset),
		u.status,
	}
	for i, line := range lines {
		u.text(1, y+i, line, styleText)
	}

	s.Show()
}

func (u *ui) marker(p spatial.Position3D, r rune, style tcell.Style, selected bool) {
	col, row := u.floor.toCell(p.X, p.Z)
	if selected {
		style = style.Reverse(true)
	}
	u.screen.SetContent(col, row, r, nil, style)
}

func (u *ui) text(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		u.screen.SetContent(x+i, y, r, nil, style)
	}
}
