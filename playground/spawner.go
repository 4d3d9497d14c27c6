package playground

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	spawnHeight = 5.0
	spawnExtent = 4.0
)

// Spawn is one drawn spawn request.
type Spawn struct {
	Radius   float64
	Position mgl64.Vec3
}

// Spawner turns elapsed time into spawn counts with an explicit accumulator,
// so the number of spawns depends only on total time, not on frame slicing.
type Spawner struct {
	Interval   float64
	MaxPerTick int
	// MaxObjects caps live objects; 0 means unbounded.
	MaxObjects int

	acc float64
	rng *rand.Rand
}

func NewSpawner(interval float64, maxPerTick, maxObjects int, seed uint64) *Spawner {
	return &Spawner{
		Interval:   interval,
		MaxPerTick: maxPerTick,
		MaxObjects: maxObjects,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Due advances the accumulator by delta and returns how many objects to spawn
// now given live objects already exist. Backlog beyond MaxPerTick is dropped.
func (s *Spawner) Due(delta float64, live int) int {
	if s.Interval <= 0 || delta <= 0 {
		return 0
	}
	s.acc += delta
	n := 0
	for s.acc >= s.Interval && (s.MaxPerTick <= 0 || n < s.MaxPerTick) {
		s.acc -= s.Interval
		n++
	}
	if s.acc >= s.Interval {
		s.acc = math.Mod(s.acc, s.Interval)
	}
	if s.MaxObjects > 0 {
		n = max(0, min(n, s.MaxObjects-live))
	}
	return n
}

// Next draws one spawn: radius in [0,1), x and z in [-4,4], y = 5.
func (s *Spawner) Next() Spawn {
	return Spawn{
		Radius: s.rng.Float64(),
		Position: mgl64.Vec3{
			(s.rng.Float64()*2 - 1) * spawnExtent,
			spawnHeight,
			(s.rng.Float64()*2 - 1) * spawnExtent,
		},
	}
}

// Reset discards accumulated time.
func (s *Spawner) Reset() {
	s.acc = 0
}
