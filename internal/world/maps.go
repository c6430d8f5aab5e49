/*
 * Copyright (C) 2023 by Jason Figge
 */

package world

import (
	"fmt"
	"math"
	"sort"
)

// Layout is a built-in map plus a start pose inside it.
type Layout struct {
	Rows  []string
	Start Pose
}

var layouts = map[string]Layout{
	"box": {
		Rows: []string{
			"XXXXX",
			"X   X",
			"X   X",
			"X   X",
			"XXXXX",
		},
		Start: Pose{X: 2, Y: 2, Heading: 0, FOV: DegreesToRadians(70)},
	},
	"maze": {
		Rows: []string{
			"################",
			"#..............#",
			"#.......########",
			"#..............#",
			"#......##......#",
			"#......##......#",
			"#..............#",
			"###............#",
			"##.............#",
			"#......####..###",
			"#......#.......#",
			"#......#.......#",
			"#..............#",
			"#......#########",
			"#..............#",
			"################",
		},
		Start: Pose{X: 14.5, Y: 14.5, Heading: math.Pi, FOV: DegreesToRadians(70)},
	},
}

// LayoutNames lists the built-in maps in a stable order.
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadLayout parses a built-in map by name.
func LoadLayout(name string) (*Grid, Pose, error) {
	l, ok := layouts[name]
	if !ok {
		return nil, Pose{}, fmt.Errorf("unknown map %q (have %v)", name, LayoutNames())
	}
	g, err := ParseGrid(l.Rows...)
	if err != nil {
		return nil, Pose{}, fmt.Errorf("map %q: %w", name, err)
	}
	return g, l.Start, nil
}

func DegreesToRadians(degs float64) float64 {
	return degs * math.Pi / 180
}

func RadiansToDegrees(rads float64) float64 {
	return rads * 180 / math.Pi
}
