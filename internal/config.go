/*
 * Copyright (C) 2023 by Jason Figge
 */

package internal

import (
	"errors"
	"fmt"
	"time"

	"raycaster/internal/world"
)

const (
	Green1 = uint32(0x00FF00FF)
	Gray   = uint32(0x232323FF)
)

const (
	DefaultWidth    = 640
	DefaultHeight   = 480
	DefaultTickRate = 60
	DefaultMap      = "maze"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Width    int
	Height   int
	TickRate int
	// TickSlack lets a tick fire that much early, for hosts that poll on their own clock.
	TickSlack time.Duration
	// AlwaysTick keeps ticking and redrawing while no key is held.
	AlwaysTick bool
	Map        string
	// FOV in degrees; zero keeps the map's own.
	FOV float64
	// Workers above one cast columns in parallel.
	Workers int
	// Fisheye projects the perpendicular distance instead of the raw ray length.
	Fisheye bool
	// MaxTicks stops the controller after that many ticks; zero runs until closed.
	MaxTicks uint64
	// Remain keeps the last frame up after MaxTicks, with ticks stopped, until the
	// window is closed.
	Remain    bool
	WallColor uint32
	VoidColor uint32
}

func DefaultConfig() Config {
	return Config{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		TickRate:  DefaultTickRate,
		Map:       DefaultMap,
		Workers:   1,
		WallColor: Green1,
		VoidColor: Gray,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick rate %d", ErrInvalidConfig, c.TickRate)
	case c.TickSlack < 0:
		return fmt.Errorf("%w: tick slack %v", ErrInvalidConfig, c.TickSlack)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.FOV < 0 || c.FOV >= 360:
		return fmt.Errorf("%w: fov %v", ErrInvalidConfig, c.FOV)
	case c.Map == "":
		return fmt.Errorf("%w: no map (have %v)", ErrInvalidConfig, world.LayoutNames())
	}
	return nil
}
