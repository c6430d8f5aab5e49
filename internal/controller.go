/*
 * Copyright (C) 2023 by Jason Figge
 */

package internal

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"raycaster/internal/host"
	"raycaster/internal/input"
	"raycaster/internal/render"
	"raycaster/internal/scheduler"
	"raycaster/internal/world"
)

// Controller owns the world, the key state and the tick schedule. Every host drives
// the same controller through host.Handler.
type Controller struct {
	log       *logrus.Entry
	world     *world.World
	keys      *input.Tracker
	bindings  input.Bindings
	sched     *scheduler.Scheduler
	projector render.Projector
	workers   int
	distances []float64

	alwaysTick  bool
	maxTicks    uint64
	remain      bool
	finished    bool
	ticks       uint64
	frames      uint64
	fpsFrames   uint64
	fpsSince    time.Time
	paused      bool
	done        bool
	needsRender bool
}

func NewController(cfg Config, log *logrus.Entry) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, start, err := world.LoadLayout(cfg.Map)
	if err != nil {
		return nil, err
	}
	if cfg.FOV > 0 {
		start.FOV = world.DegreesToRadians(cfg.FOV)
	}
	w, err := world.New(grid, start, world.WithLogger(log.WithField("component", "world")))
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", cfg.Map, err)
	}
	sched, err := scheduler.FromRate(cfg.TickRate)
	if err != nil {
		return nil, err
	}
	sched.SetAlwaysTick(cfg.AlwaysTick)
	sched.SetSlack(cfg.TickSlack)

	return &Controller{
		log:      log,
		world:    w,
		keys:     input.NewTracker(),
		bindings: input.DefaultBindings(),
		sched:    sched,
		projector: render.Projector{
			Wall:              render.RGBA(cfg.WallColor),
			Void:              render.RGBA(cfg.VoidColor),
			FisheyeCorrection: cfg.Fisheye,
			FOV:               start.FOV,
		},
		workers:     cfg.Workers,
		alwaysTick:  cfg.AlwaysTick,
		maxTicks:    cfg.MaxTicks,
		remain:      cfg.Remain,
		needsRender: true,
	}, nil
}

func (c *Controller) HandleEvent(ev host.Event) {
	switch ev.Kind {
	case host.EventKey:
		c.keyboardEvent(ev)
	case host.EventResize:
		c.log.Debugf("resized to %dx%d", ev.Width, ev.Height)
		c.needsRender = true
	case host.EventExpose:
		c.needsRender = true
	case host.EventClose:
		c.log.Info("close requested; stopping")
		c.done = true
	}
}

func (c *Controller) keyboardEvent(ev host.Event) {
	if ev.Repeat {
		return
	}
	cmd, ok := c.bindings.Lookup(ev.Key)
	if !ok {
		c.log.WithField("key", ev.Key).Debug("unbound key dropped")
		return
	}
	if cmd.Kind == input.CommandSystem {
		if ev.Pressed {
			c.system(cmd.Action)
		}
		return
	}
	if ev.Pressed {
		c.keys.KeyDown(ev.Key)
	} else {
		c.keys.KeyUp(ev.Key)
	}
}

func (c *Controller) system(action input.SystemAction) {
	switch action {
	case input.ActionExit:
		c.log.Info("exit requested")
		c.done = true
	case input.ActionPause:
		c.paused = !c.paused
		c.log.WithField("paused", c.paused).Info("pause toggled")
	}
}

// Idle runs a tick when one is due and tells the host how long it may wait.
func (c *Controller) Idle(now time.Time) scheduler.Decision {
	if c.finished {
		return scheduler.Decision{Action: scheduler.Idle}
	}
	d := c.sched.Poll(now, c.keys.Busy())
	if d.Action == scheduler.Tick {
		c.OnUpdate()
	}
	return d
}

// OnUpdate applies every key held during the tick, in key order.
func (c *Controller) OnUpdate() {
	c.ticks++
	held := c.keys.Drain()
	if c.paused {
		c.checkTickLimit()
		return
	}

	changed := c.alwaysTick
	for _, k := range held {
		cmd, _ := c.bindings.Lookup(k)
		switch cmd.Kind {
		case input.CommandMove:
			if c.world.MovePlayer(cmd.Move) {
				changed = true
			}
		case input.CommandPan:
			c.world.Pan(cmd.Pan)
			changed = true
		}
	}
	if changed {
		c.needsRender = true
	}
	c.checkTickLimit()
}

// checkTickLimit ends the run once MaxTicks ticks have passed. With remain set the
// window stays up showing the last frame and only a close ends it.
func (c *Controller) checkTickLimit() {
	if c.maxTicks == 0 || c.ticks < c.maxTicks {
		return
	}
	if !c.remain {
		c.done = true
		return
	}
	if !c.finished {
		c.finished = true
		c.log.WithField("ticks", c.ticks).Info("finished; showing last frame until closed")
	}
}

func (c *Controller) NeedsRedraw() bool { return c.needsRender }

// Redraw casts one ray per column of the surface and presents the result. On error
// the frame stays dirty and is retried on the next redraw.
func (c *Controller) Redraw(s host.Surface) error {
	width, height := s.Size()
	buf := s.Buffer()
	if err := render.CheckBuffer(buf, width, height); err != nil {
		return err
	}
	distances, err := c.castColumns(width)
	if err != nil {
		return err
	}
	if _, err := c.projector.Render(buf, width, height, distances); err != nil {
		return err
	}
	if err := s.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	c.needsRender = false
	c.frames++
	c.frameRate(time.Now())
	return nil
}

func (c *Controller) castColumns(width int) (iter.Seq[float64], error) {
	if c.workers <= 1 {
		return c.world.CastColumns(width), nil
	}
	if cap(c.distances) < width {
		c.distances = make([]float64, width)
	}
	c.distances = c.distances[:width]
	if err := c.world.CastColumnsInto(context.Background(), c.distances, c.workers); err != nil {
		return nil, err
	}
	return slices.Values(c.distances), nil
}

func (c *Controller) frameRate(now time.Time) {
	if c.fpsSince.IsZero() {
		c.fpsSince = now
	}
	c.fpsFrames++
	if elapsed := now.Sub(c.fpsSince); elapsed >= time.Second {
		c.log.Debugf("%.1f fps", float64(c.fpsFrames)/elapsed.Seconds())
		c.fpsSince = now
		c.fpsFrames = 0
	}
}

func (c *Controller) Done() bool          { return c.done }
func (c *Controller) Finished() bool      { return c.finished }
func (c *Controller) Paused() bool        { return c.paused }
func (c *Controller) Pose() world.Pose    { return c.world.Pose() }
func (c *Controller) Ticks() uint64       { return c.ticks }
func (c *Controller) Frames() uint64      { return c.frames }
func (c *Controller) World() *world.World { return c.world }
