/*
 * Copyright (C) 2023 by Jason Figge
 */

package world

import (
	"errors"
	"fmt"
	"math"
)

type Cell uint8

const (
	Empty Cell = iota
	Wall
)

var (
	ErrEmptyGrid = errors.New("grid has no cells")
	ErrRagged    = errors.New("grid rows differ in length")
)

// Grid is an immutable occupancy map indexed [y*width+x].
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// ParseGrid builds a grid from text rows, top row first. '#' and 'X' are walls,
// '.' and ' ' are empty.
func ParseGrid(rows ...string) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	g := &Grid{
		width:  len(rows[0]),
		height: len(rows),
		cells:  make([]Cell, len(rows[0])*len(rows)),
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), g.width, ErrRagged)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '#', 'X':
				g.cells[y*g.width+x] = Wall
			case '.', ' ':
				g.cells[y*g.width+x] = Empty
			default:
				return nil, fmt.Errorf("unknown cell %q at %d,%d", row[x], x, y)
			}
		}
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// At returns the cell at integer indices. Out of range reads as Wall.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return Wall
	}
	return g.cells[y*g.width+x]
}

// IsWall truncates a continuous point toward zero to find its cell, so (-1, 0) is
// still column 0. Anything off the grid, and NaN, is a wall.
func (g *Grid) IsWall(x, y float64) bool {
	if !(x > -1 && x < float64(g.width)) || !(y > -1 && y < float64(g.height)) {
		return true
	}
	return g.At(int(x), int(y)) == Wall
}

func (g *Grid) Diagonal() float64 {
	return math.Hypot(float64(g.width), float64(g.height))
}
