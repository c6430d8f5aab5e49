/*
 * Copyright (C) 2023 by Jason Figge
 */

package world

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	MarchStep = 0.01
	MoveStep  = 0.2
	PanStep   = math.Pi / 8
)

var ErrStartInWall = errors.New("start position is inside a wall")

// Heading is a movement relative to where the player is facing.
type Heading int

const (
	Forward Heading = iota
	Backward
	StrafeLeft
	StrafeRight
)

func (h Heading) offset() float64 {
	switch h {
	case Backward:
		return math.Pi
	case StrafeLeft:
		return -math.Pi / 2
	case StrafeRight:
		return math.Pi / 2
	}
	return 0
}

func (h Heading) String() string {
	switch h {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case StrafeLeft:
		return "strafe-left"
	case StrafeRight:
		return "strafe-right"
	}
	return fmt.Sprintf("heading(%d)", int(h))
}

type PanDirection int

const (
	PanLeft PanDirection = iota
	PanRight
)

func (d PanDirection) String() string {
	if d == PanLeft {
		return "pan-left"
	}
	return "pan-right"
}

type Pose struct {
	X       float64
	Y       float64
	Heading float64
	FOV     float64
}

type World struct {
	grid *Grid
	pose Pose
	log  *logrus.Entry
}

type Option func(*World)

func WithLogger(log *logrus.Entry) Option {
	return func(w *World) { w.log = log }
}

// New places the player on the grid. The start position must be an open cell.
func New(grid *Grid, start Pose, opts ...Option) (*World, error) {
	if grid == nil {
		return nil, ErrEmptyGrid
	}
	if !(start.FOV > 0 && start.FOV < 2*math.Pi) {
		return nil, fmt.Errorf("field of view %v out of range (0, 2π)", start.FOV)
	}
	if grid.IsWall(start.X, start.Y) {
		return nil, fmt.Errorf("%.2f,%.2f: %w", start.X, start.Y, ErrStartInWall)
	}
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	w := &World{grid: grid, pose: start, log: logrus.NewEntry(quiet)}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *World) Grid() *Grid { return w.grid }
func (w *World) Pose() Pose  { return w.pose }

func (w *World) IsWall(x, y float64) bool {
	return w.grid.IsWall(x, y)
}

// MaxDistance caps every ray march. No point on the grid is further than this
// from any other.
func (w *World) MaxDistance() float64 {
	return w.grid.Diagonal() + 1
}

func (w *World) DistanceToWall(heading float64) float64 {
	return w.distanceFrom(w.pose, heading)
}

func (w *World) distanceFrom(p Pose, heading float64) float64 {
	limit := w.MaxDistance()
	distance := 0.0
	x, y := p.X, p.Y
	for !w.grid.IsWall(x, y) {
		distance += MarchStep
		if distance >= limit {
			return limit
		}
		x, y = MoveForward(p.X, p.Y, heading, distance)
	}
	return distance
}

// CastColumns yields one wall distance per screen column, left to right. The pose is
// read once each time the sequence is ranged over.
func (w *World) CastColumns(width int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		p := w.pose
		for i := 0; i < width; i++ {
			if !yield(w.distanceFrom(p, p.Heading+RayAngle(i, width, p.FOV))) {
				return
			}
		}
	}
}

// CastColumnsInto fills dst with the same distances as CastColumns(len(dst)), splitting
// the columns across workers. The world must not be mutated until it returns.
func (w *World) CastColumnsInto(ctx context.Context, dst []float64, workers int) error {
	if workers < 1 {
		workers = 1
	}
	p := w.pose
	count := len(dst)
	chunk := (count + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < count; start += chunk {
		end := min(start+chunk, count)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%64 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				dst[i] = w.distanceFrom(p, p.Heading+RayAngle(i, count, p.FOV))
			}
			return nil
		})
	}
	return g.Wait()
}

// MovePlayer steps the player MoveStep along the heading. The move is dropped when it
// would end inside a wall.
func (w *World) MovePlayer(h Heading) bool {
	x, y := MoveForward(w.pose.X, w.pose.Y, w.pose.Heading+h.offset(), MoveStep)
	if w.grid.IsWall(x, y) {
		return false
	}
	w.pose.X, w.pose.Y = x, y
	return true
}

func (w *World) Pan(d PanDirection) {
	if d == PanLeft {
		w.pose.Heading -= PanStep
	} else {
		w.pose.Heading += PanStep
	}
	w.log.Debugf("heading %.0f", RadiansToDegrees(w.pose.Heading))
}

func MoveForward(x, y, heading, distance float64) (float64, float64) {
	return x + math.Cos(heading)*distance, y + math.Sin(heading)*distance
}

// RayAngle is the offset from the heading of column i out of count.
func RayAngle(i, count int, fov float64) float64 {
	if count <= 1 {
		return 0
	}
	if i == count-1 {
		return fov / 2
	}
	return -fov/2 + fov/float64(count-1)*float64(i)
}

func RayAngles(count int, fov float64) []float64 {
	if count <= 0 {
		return nil
	}
	angles := make([]float64, count)
	for i := range angles {
		angles[i] = RayAngle(i, count, fov)
	}
	return angles
}
