package playground

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpawnerBounds(t *testing.T) {
	s := NewSpawner(0.15, 3, 0, 7)
	for i := 0; i < 5000; i++ {
		sp := s.Next()
		assert.GreaterOrEqual(t, sp.Radius, 0.0)
		assert.Less(t, sp.Radius, 1.0)
		assert.Equal(t, 5.0, sp.Position[1])
		for _, c := range []float64{sp.Position[0], sp.Position[2]} {
			assert.GreaterOrEqual(t, c, -4.0)
			assert.LessOrEqual(t, c, 4.0)
		}
	}
}

func TestSpawnerSeedIsDeterministic(t *testing.T) {
	a, b := NewSpawner(0.15, 3, 0, 99), NewSpawner(0.15, 3, 0, 99)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
	assert.NotEqual(t, NewSpawner(0.15, 3, 0, 1).Next(), NewSpawner(0.15, 3, 0, 2).Next())
}

func TestSpawnCountIndependentOfFrameSlicing(t *testing.T) {
	// binary fractions keep the sums exact
	for _, delta := range []float64{1.0 / 64, 1.0 / 16, 1.0 / 8, 1.0 / 4} {
		s := NewSpawner(0.25, 100, 0, 1)
		total := 0
		for elapsed := 0.0; elapsed < 4; elapsed += delta {
			total += s.Due(delta, 0)
		}
		assert.Equal(t, 16, total, "delta %v", delta)
	}
}

func TestSpawnerDropsBacklogAfterStall(t *testing.T) {
	s := NewSpawner(0.15, 3, 0, 1)
	assert.Equal(t, 3, s.Due(2.0, 0))
	assert.Less(t, s.acc, s.Interval)
	assert.Equal(t, 0, s.Due(0, 0))
}

func TestSpawnerMaxObjects(t *testing.T) {
	s := NewSpawner(0.25, 10, 5, 1)
	assert.Equal(t, 2, s.Due(1.0, 3))
	assert.Equal(t, 0, s.Due(1.0, 5))
	assert.Equal(t, 0, s.Due(1.0, 9))
}

func TestSpawnerReset(t *testing.T) {
	s := NewSpawner(0.25, 10, 0, 1)
	assert.Equal(t, 0, s.Due(0.125, 0))
	s.Reset()
	assert.Equal(t, 0, s.Due(0.125, 0))
	assert.Equal(t, 1, s.Due(0.125, 0))
}
