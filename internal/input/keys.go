/*
 * Copyright (C) 2023 by Jason Figge
 */

package input

import (
	"strings"

	"raycaster/internal/world"
)

// Key is a logical key. Hosts translate their physical or layout specific codes into
// these before anything else sees them.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyA
	KeyE
	KeyQ
	KeyS
	KeyZ
	KeyD
	KeyEscape
	KeySpace
)

var keyNames = map[Key]string{
	KeyUp:     "up",
	KeyDown:   "down",
	KeyLeft:   "left",
	KeyRight:  "right",
	KeyA:      "a",
	KeyE:      "e",
	KeyQ:      "q",
	KeyS:      "s",
	KeyZ:      "z",
	KeyD:      "d",
	KeyEscape: "escape",
	KeySpace:  "space",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKey accepts the names printed by Key.String, case insensitive.
func ParseKey(name string) (Key, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range keyNames {
		if n == name {
			return k, true
		}
	}
	return KeyUnknown, false
}

type CommandKind uint8

const (
	CommandMove CommandKind = iota + 1
	CommandPan
	CommandSystem
)

type SystemAction uint8

const (
	ActionPause SystemAction = iota + 1
	ActionExit
)

// Command is what a bound key does. Only the field matching Kind is meaningful.
type Command struct {
	Kind   CommandKind
	Move   world.Heading
	Pan    world.PanDirection
	Action SystemAction
}

func Move(h world.Heading) Command     { return Command{Kind: CommandMove, Move: h} }
func Pan(d world.PanDirection) Command { return Command{Kind: CommandPan, Pan: d} }
func System(a SystemAction) Command    { return Command{Kind: CommandSystem, Action: a} }

type Bindings map[Key]Command

// DefaultBindings puts the arrows and an AZERTY letter cluster on the same commands.
func DefaultBindings() Bindings {
	return Bindings{
		KeyUp:     Move(world.Forward),
		KeyZ:      Move(world.Forward),
		KeyDown:   Move(world.Backward),
		KeyS:      Move(world.Backward),
		KeyQ:      Move(world.StrafeLeft),
		KeyD:      Move(world.StrafeRight),
		KeyLeft:   Pan(world.PanLeft),
		KeyA:      Pan(world.PanLeft),
		KeyRight:  Pan(world.PanRight),
		KeyE:      Pan(world.PanRight),
		KeyEscape: System(ActionExit),
		KeySpace:  System(ActionPause),
	}
}

func (b Bindings) Lookup(k Key) (Command, bool) {
	c, ok := b[k]
	return c, ok
}
