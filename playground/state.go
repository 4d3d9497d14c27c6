package playground

import (
	"fmt"
	"strings"
)

// Toggle names one of the seven user-facing flags.
type Toggle int

// Panel order.
const (
	ToggleBasicMesh Toggle = iota
	ToggleCubeMaterial
	ToggleTextureMaterial
	ToggleWireframe
	ToggleAnimation
	ToggleImportedShip
	TogglePhysics
	toggleCount
)

// Toggles lists every toggle in panel order; key 1 maps to the first.
var Toggles = [toggleCount]Toggle{
	ToggleBasicMesh,
	ToggleCubeMaterial,
	ToggleTextureMaterial,
	ToggleWireframe,
	ToggleAnimation,
	ToggleImportedShip,
	TogglePhysics,
}

var toggleNames = [toggleCount]string{
	"basicMesh",
	"cubeMaterial",
	"textureMaterial",
	"wireframe",
	"animation",
	"importedShip",
	"physics",
}

func (t Toggle) Valid() bool {
	return t >= 0 && t < toggleCount
}

func (t Toggle) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Toggle(%d)", int(t))
	}
	return toggleNames[t]
}

// ParseToggle returns the toggle with the given name.
func ParseToggle(name string) (Toggle, bool) {
	for i, n := range toggleNames {
		if strings.EqualFold(n, name) {
			return Toggle(i), true
		}
	}
	return 0, false
}

// State holds the seven flags. All start off.
type State struct {
	BasicMesh       bool
	CubeMaterial    bool
	TextureMaterial bool
	Wireframe       bool
	Animation       bool
	ImportedShip    bool
	Physics         bool
}

func (s *State) field(t Toggle) *bool {
	switch t {
	case ToggleBasicMesh:
		return &s.BasicMesh
	case ToggleCubeMaterial:
		return &s.CubeMaterial
	case ToggleTextureMaterial:
		return &s.TextureMaterial
	case ToggleWireframe:
		return &s.Wireframe
	case ToggleAnimation:
		return &s.Animation
	case ToggleImportedShip:
		return &s.ImportedShip
	case TogglePhysics:
		return &s.Physics
	}
	return nil
}

// Get returns the value of t; unknown toggles read as off.
func (s *State) Get(t Toggle) bool {
	if f := s.field(t); f != nil {
		return *f
	}
	return false
}

// flip inverts t and returns the new value.
func (s *State) flip(t Toggle) bool {
	f := s.field(t)
	*f = !*f
	return *f
}

// String renders the flags compactly, e.g. for a window title.
func (s State) String() string {
	var sb strings.Builder
	for i, t := range Toggles {
		if i > 0 {
			sb.WriteByte(' ')
		}
		mark := '-'
		if s.Get(t) {
			mark = '+'
		}
		sb.WriteRune(mark)
		sb.WriteString(t.String())
	}
	return sb.String()
}
