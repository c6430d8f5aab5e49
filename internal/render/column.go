/*
 * Copyright (C) 2023 by Jason Figge
 */

package render

import (
	"errors"
	"fmt"
	"image/color"
	"iter"
	"math"

	"raycaster/internal/world"
)

// Epsilon is the smallest distance used when projecting, so a player pressed against
// a wall gets a full height column instead of a division by zero.
const Epsilon = 1e-3

var ErrShortBuffer = errors.New("pixel buffer smaller than width*height*4")

// RGBA splits a 0xRRGGBBAA value.
func RGBA(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 24), G: uint8(c >> 16), B: uint8(c >> 8), A: uint8(c)}
}

func CheckBuffer(buf []byte, width, height int) error {
	if width < 0 || height < 0 || len(buf) < width*height*4 {
		return fmt.Errorf("%d bytes for %dx%d: %w", len(buf), width, height, ErrShortBuffer)
	}
	return nil
}

// PutPixel writes one RGBA8 pixel into a row-major buffer. Pixels outside the
// buffer are ignored.
func PutPixel(buf []byte, width, x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= width {
		return
	}
	i := (y*width + x) * 4
	if i+3 >= len(buf) {
		return
	}
	buf[i] = c.R
	buf[i+1] = c.G
	buf[i+2] = c.B
	buf[i+3] = c.A
}

// ColumnHeight projects a wall distance onto a screen of the given height.
func ColumnHeight(screenHeight int, distance float64) int {
	if screenHeight <= 0 {
		return 0
	}
	if !(distance > Epsilon) {
		distance = Epsilon
	}
	h := math.Floor(float64(screenHeight) / distance)
	if h >= float64(screenHeight) {
		return screenHeight
	}
	return int(h)
}

// DrawCenteredColumn paints column x: wall for columnHeight rows centered on the
// middle of the screen, void above and below.
func DrawCenteredColumn(buf []byte, width, height, x, columnHeight int, wall, void color.RGBA) {
	if x < 0 || x >= width {
		return
	}
	columnHeight = max(0, min(columnHeight, height))
	mid := height / 2
	top := max(0, mid-columnHeight/2)
	bottom := min(height, top+columnHeight)

	for y := 0; y < height; y++ {
		if y >= top && y < bottom {
			PutPixel(buf, width, x, y, wall)
		} else {
			PutPixel(buf, width, x, y, void)
		}
	}
}

// Projector turns a batch of column distances into wall slices.
type Projector struct {
	Wall color.RGBA
	Void color.RGBA
	// FisheyeCorrection projects the perpendicular distance instead of the ray length.
	FisheyeCorrection bool
	FOV               float64
}

// Render draws one column per distance, left to right, and returns how many columns
// were drawn. Columns past width are ignored.
func (p Projector) Render(buf []byte, width, height int, distances iter.Seq[float64]) (int, error) {
	if err := CheckBuffer(buf, width, height); err != nil {
		return 0, err
	}
	x := 0
	for d := range distances {
		if x >= width {
			break
		}
		if p.FisheyeCorrection {
			d *= math.Cos(world.RayAngle(x, width, p.FOV))
		}
		DrawCenteredColumn(buf, width, height, x, ColumnHeight(height, d), p.Wall, p.Void)
		x++
	}
	return x, nil
}

// Fill paints every pixel of the buffer.
func Fill(buf []byte, c color.RGBA) {
	for i := 0; i+3 < len(buf); i += 4 {
		buf[i] = c.R
		buf[i+1] = c.G
		buf[i+2] = c.B
		buf[i+3] = c.A
	}
}
