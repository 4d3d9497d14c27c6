package playground

import (
	"fortio.org/log"

	"physics-playground/scene"
)

// Toggle flips t and applies its effect. Every transition is reversible:
// toggling the same flag twice restores the previous scene.
func (p *Playground) Toggle(t Toggle) {
	if !t.Valid() {
		log.Debugf("[Playground] ignoring unknown toggle %v", t)
		return
	}
	on := p.State.flip(t)
	log.Debugf("[Playground] %s -> %v", t, on)

	switch t {
	case ToggleBasicMesh:
		if on {
			p.Scene.AddNode(p.cube)
		} else {
			p.Scene.RemoveNode(p.cube)
		}
	case ToggleCubeMaterial:
		p.setCubeMaterial(on, p.cubeMaterials.flat)
	case ToggleTextureMaterial:
		p.setCubeMaterial(on, p.cubeMaterials.textured)
	case ToggleWireframe:
		p.cube.Material.Wireframe = on
	case ToggleAnimation:
		// applied per tick
	case ToggleImportedShip:
		if p.ship == nil {
			if p.shipErr != nil {
				log.Debugf("[Playground] %s toggled but the model failed to load", t)
			} else {
				log.Debugf("[Playground] %s toggled before the model finished loading", t)
			}
		}
		p.reconcileShip()
	case TogglePhysics:
		if on {
			p.startPhysics()
		} else {
			p.stopPhysics()
		}
	}
}

// setCubeMaterial swaps the cube's slot. The last toggle to fire wins; the
// wireframe flag follows the cube.
func (p *Playground) setCubeMaterial(on bool, m *scene.Material) {
	prev := p.cube.Material
	if !on {
		m = p.cubeMaterials.standard
	}
	prev.Wireframe = false
	m.Wireframe = p.State.Wireframe
	p.cube.Material = m
}

// reconcileShip makes the scene match the import flag. The flag is the
// desired state, so a model that resolves later is attached then.
func (p *Playground) reconcileShip() {
	if p.ship == nil {
		return
	}
	attached := p.Scene.Contains(p.ship)
	switch {
	case p.State.ImportedShip && !attached:
		p.Scene.AddNode(p.ship)
	case !p.State.ImportedShip && attached:
		p.Scene.RemoveNode(p.ship)
	}
}

func (p *Playground) startPhysics() {
	p.Scene.AddNode(p.floorNode)
	p.World.AddBody(p.floorBody)
	p.Spawner.Reset()
}

// stopPhysics removes the floor and every registered object. Bodies left in
// the world afterwards were never registered and are reported as leaks.
func (p *Playground) stopPhysics() {
	removed := p.Registry.Clear()
	for _, obj := range removed {
		p.Factory.Release(obj)
	}
	p.Scene.RemoveNode(p.floorNode)
	p.World.RemoveBody(p.floorBody)
	p.Spawner.Reset()

	for _, b := range p.World.Bodies() {
		log.Warnf("[Playground] removing unregistered %s body %d", b.Shape.Kind(), b.ID)
		p.World.RemoveBody(b)
	}
	log.Debugf("[Playground] physics off, released %d objects", len(removed))
}
