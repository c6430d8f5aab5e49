/*
 * Copyright (C) 2023 by Jason Figge
 */

package world

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func boxWorld(t *testing.T, rows ...string) *World {
	t.Helper()
	if len(rows) == 0 {
		rows = []string{
			"XXXXX",
			"X   X",
			"X   X",
			"X   X",
			"XXXXX",
		}
	}
	g, err := ParseGrid(rows...)
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	w, err := New(g, Pose{X: 2, Y: 2, FOV: DegreesToRadians(70)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestMoveForward(t *testing.T) {
	for _, h := range []float64{0, 1, math.Pi, -2.5} {
		x, y := MoveForward(3.25, -1.5, h, 0)
		if x != 3.25 || y != -1.5 {
			t.Fatalf("MoveForward(p, %v, 0) = %v,%v, want p", h, x, y)
		}
	}

	if x, y := MoveForward(0, 0, 0, 1); x != 1 || y != 0 {
		t.Fatalf("MoveForward(0,0,0,1) = %v,%v, want 1,0", x, y)
	}
	if x, y := MoveForward(0, 0, math.Pi, 1); !near(x, -1, 1e-9) || !near(y, 0, 1e-9) {
		t.Fatalf("MoveForward(0,0,π,1) = %v,%v, want -1,0", x, y)
	}
	if x, y := MoveForward(0, 0, math.Pi/2, 1); !near(x, 0, 1e-9) || !near(y, 1, 1e-9) {
		t.Fatalf("MoveForward(0,0,π/2,1) = %v,%v, want 0,1", x, y)
	}
	if x, y := MoveForward(0, 0, 3*math.Pi/2, 1); !near(x, 0, 1e-9) || !near(y, -1, 1e-9) {
		t.Fatalf("MoveForward(0,0,3π/2,1) = %v,%v, want 0,-1", x, y)
	}
}

func TestRayAngles(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 50, 641} {
		for _, fov := range []float64{0.5, 3, 4, DegreesToRadians(70)} {
			got := RayAngles(n, fov)
			if len(got) != n {
				t.Fatalf("len(RayAngles(%d, %v)) = %d", n, fov, len(got))
			}
			if got[0] != -fov/2 {
				t.Fatalf("RayAngles(%d, %v)[0] = %v, want %v", n, fov, got[0], -fov/2)
			}
			if got[n-1] != fov/2 {
				t.Fatalf("RayAngles(%d, %v)[last] = %v, want %v", n, fov, got[n-1], fov/2)
			}
			step := fov / float64(n-1)
			for i := 1; i < n; i++ {
				if !near(got[i]-got[i-1], step, 1e-9) {
					t.Fatalf("RayAngles(%d, %v) spacing at %d = %v, want %v", n, fov, i, got[i]-got[i-1], step)
				}
			}
		}
	}

	if got := RayAngles(1, 2); len(got) != 1 || got[0] != 0 {
		t.Fatalf("RayAngles(1, 2) = %v, want [0]", got)
	}
	if got := RayAngles(0, 2); len(got) != 0 {
		t.Fatalf("RayAngles(0, 2) = %v, want empty", got)
	}

	got := RayAngles(4, 4)
	want := []float64{-2, -2.0 / 3, 2.0 / 3, 2}
	for i := range want {
		if !near(got[i], want[i], 1e-9) {
			t.Fatalf("RayAngles(4, 4) = %v, want %v", got, want)
		}
	}
}

func TestDistanceToWallClosedBorder(t *testing.T) {
	w := boxWorld(t)
	d := w.DistanceToWall(0)
	if !near(d, 2, MarchStep+1e-9) {
		t.Fatalf("DistanceToWall(0) = %v, want 2 ± %v", d, MarchStep)
	}
	d = w.DistanceToWall(math.Pi / 2)
	if !near(d, 2, MarchStep+1e-9) {
		t.Fatalf("DistanceToWall(π/2) = %v, want 2 ± %v", d, MarchStep)
	}
	d = w.DistanceToWall(math.Pi)
	if !near(d, 1, MarchStep+1e-9) {
		t.Fatalf("DistanceToWall(π) = %v, want 1 ± %v", d, MarchStep)
	}
}

func TestDistanceToWallOpenBorder(t *testing.T) {
	w := boxWorld(t,
		"XXXXX",
		"X   X",
		"X    ",
		"X   X",
		"XXXXX",
	)
	d := w.DistanceToWall(0)
	if !near(d, 3, MarchStep+1e-9) {
		t.Fatalf("DistanceToWall(0) = %v, want 3 ± %v (grid edge)", d, MarchStep)
	}
}

func TestDistanceToWallIsBounded(t *testing.T) {
	w := boxWorld(t,
		"     ",
		"     ",
		"     ",
		"     ",
		"     ",
	)
	for i := 0; i < 360; i++ {
		h := DegreesToRadians(float64(i))
		if d := w.DistanceToWall(h); d > w.MaxDistance() {
			t.Fatalf("DistanceToWall(%d°) = %v, want <= %v", i, d, w.MaxDistance())
		}
	}
}

func TestCastColumns(t *testing.T) {
	w := boxWorld(t)
	seq := w.CastColumns(9)

	first := slices.Collect(seq)
	if len(first) != 9 {
		t.Fatalf("len(CastColumns(9)) = %d, want 9", len(first))
	}
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Fatalf("CastColumns is not restartable: %v != %v", first, second)
	}

	if d := first[4]; d != w.DistanceToWall(0) {
		t.Fatalf("center column = %v, want %v", d, w.DistanceToWall(0))
	}
	for i, d := range first {
		if d <= 0 || d > w.MaxDistance() {
			t.Fatalf("column %d = %v, want in (0, %v]", i, d, w.MaxDistance())
		}
	}

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("early break consumed %d, want 3", n)
	}
}

func TestCastColumnsIntoMatchesSequential(t *testing.T) {
	g, start, err := LoadLayout("maze")
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	w, err := New(g, start)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := slices.Collect(w.CastColumns(157))
	for _, workers := range []int{0, 1, 3, 8, 200} {
		got := make([]float64, 157)
		if err := w.CastColumnsInto(context.Background(), got, workers); err != nil {
			t.Fatalf("CastColumnsInto(workers=%d): %v", workers, err)
		}
		if !slices.Equal(got, want) {
			t.Fatalf("CastColumnsInto(workers=%d) differs from CastColumns", workers)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.CastColumnsInto(ctx, make([]float64, 10), 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("CastColumnsInto(cancelled) err = %v, want context.Canceled", err)
	}
}

func TestNewRejectsStartInWall(t *testing.T) {
	g, err := ParseGrid("###", "#.#", "###")
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if _, err := New(g, Pose{X: 0.5, Y: 0.5, FOV: 1}); !errors.Is(err, ErrStartInWall) {
		t.Fatalf("New(in wall) err = %v, want ErrStartInWall", err)
	}
	if _, err := New(g, Pose{X: 1.5, Y: 1.5, FOV: 0}); err == nil {
		t.Fatal("New(fov=0) err = nil, want error")
	}
}

func TestMovePlayer(t *testing.T) {
	w := boxWorld(t)
	if !w.MovePlayer(Forward) {
		t.Fatal("MovePlayer(Forward) = false, want true")
	}
	if p := w.Pose(); !near(p.X, 2.2, 1e-9) || !near(p.Y, 2, 1e-9) {
		t.Fatalf("pose after forward = %v,%v, want 2.2,2", p.X, p.Y)
	}
	w.MovePlayer(Backward)
	if p := w.Pose(); !near(p.X, 2, 1e-9) || !near(p.Y, 2, 1e-9) {
		t.Fatalf("pose after backward = %v,%v, want 2,2", p.X, p.Y)
	}
	w.MovePlayer(StrafeRight)
	if p := w.Pose(); !near(p.X, 2, 1e-9) || !near(p.Y, 2.2, 1e-9) {
		t.Fatalf("pose after strafe right = %v,%v, want 2,2.2", p.X, p.Y)
	}
	w.MovePlayer(StrafeLeft)
	if p := w.Pose(); !near(p.Y, 2, 1e-9) {
		t.Fatalf("pose after strafe left y = %v, want 2", p.Y)
	}

	for i := 0; i < 20; i++ {
		w.MovePlayer(Forward)
	}
	p := w.Pose()
	if p.X >= 4 || w.IsWall(p.X, p.Y) {
		t.Fatalf("walked into wall at %v,%v", p.X, p.Y)
	}
	if w.MovePlayer(Forward) {
		t.Fatal("MovePlayer(Forward) against wall = true, want false")
	}
	if got := w.Pose(); got != p {
		t.Fatalf("rejected move changed pose: %v -> %v", p, got)
	}
}

func TestMovePlayerNeverEntersWall(t *testing.T) {
	g, start, err := LoadLayout("maze")
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	w, err := New(g, start)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20_000; i++ {
		if r.Intn(4) == 0 {
			w.Pan(PanDirection(r.Intn(2)))
		} else {
			w.MovePlayer(Heading(r.Intn(4)))
		}
		if p := w.Pose(); w.IsWall(p.X, p.Y) {
			t.Fatalf("step %d: player inside wall at %v,%v", i, p.X, p.Y)
		}
	}
}

func TestPan(t *testing.T) {
	w := boxWorld(t)
	w.Pan(PanRight)
	if h := w.Pose().Heading; !near(h, PanStep, 1e-12) {
		t.Fatalf("heading after pan right = %v, want %v", h, PanStep)
	}
	w.Pan(PanLeft)
	w.Pan(PanLeft)
	if h := w.Pose().Heading; !near(h, -PanStep, 1e-12) {
		t.Fatalf("heading after pan left x2 = %v, want %v", h, -PanStep)
	}
}
