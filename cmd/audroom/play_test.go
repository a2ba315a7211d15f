// SPDX-License-Identifier: EPL-2.0

package main

import (
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestFloorRect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h int
		want rect
	}{
		{w: 80, h: 24, want: rect{x: 1, y: 1, w: 34, h: 17}},
		{w: 40, h: 50, want: rect{x: 1, y: 1, w: 38, h: 19}},
		{w: 4, h: 4, want: rect{x: 1, y: 1, w: 6, h: 3}},
	}

	for _, tt := range tests {
		if got := floorRect(tt.w, tt.h); got != tt.want {
			t.Errorf("floorRect(%d, %d) = %+v, want %+v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRect_FloorMapping(t *testing.T) {
	t.Parallel()

	r := rect{x: 1, y: 1, w: 21, h: 11}

	corners := []struct {
		col, row int
		x, z     float64
	}{
		{col: 1, row: 1, x: -5, z: -5},
		{col: 21, row: 11, x: 5, z: 5},
		{col: 11, row: 6, x: 0, z: 0},
	}
	for _, c := range corners {
		x, z := r.toFloor(c.col, c.row)
		if x != c.x || z != c.z {
			t.Errorf("toFloor(%d, %d) = (%v, %v), want (%v, %v)", c.col, c.row, x, z, c.x, c.z)
		}
		col, row := r.toCell(c.x, c.z)
		if col != c.col || row != c.row {
			t.Errorf("toCell(%v, %v) = (%d, %d), want (%d, %d)", c.x, c.z, col, row, c.col, c.row)
		}
	}

	// Outside the floor clamps to the walls.
	if x, z := r.toFloor(-10, 100); x != -5 || z != 5 {
		t.Errorf("toFloor outside = (%v, %v), want (-5, 5)", x, z)
	}
	if col, row := r.toCell(math.Inf(1), -7); col != 21 || row != 1 {
		t.Errorf("toCell outside = (%d, %d), want (21, 1)", col, row)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"https://example.com/media": true,
		"http://localhost:8080":     true,
		"media":                     false,
		"/srv/media":                false,
		"":                          false,
	} {
		if got := isURL(in); got != want {
			t.Errorf("isURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPollEvents_StopsWhenNobodyListens(t *testing.T) {
	t.Parallel()

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()

	for _, r := range "abc" {
		screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}

	events := make(chan tcell.Event, 1)
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		pollEvents(screen, events, quit)
	}()

	// The first event fills the buffer; the next one has nowhere to go.
	select {
	case <-done:
		t.Fatal("pollEvents returned before quit")
	case <-time.After(50 * time.Millisecond):
	}

	close(quit)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pollEvents still blocked after quit")
	}
}
