package physics

import (
	"cmp"
	"slices"
)

// Pair is a candidate collision pair. A.ID < B.ID.
type Pair struct {
	A, B *Body
}

func makePair(a, b *Body) Pair {
	if a.ID > b.ID {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Broadphase finds body pairs whose bounds overlap.
type Broadphase interface {
	CollisionPairs(bodies []*Body) []Pair
}

// needsCollision filters pairs that can never exchange impulses: two static
// bodies, two sleeping bodies, or a sleeping body against a static one.
func needsCollision(a, b *Body) bool {
	return a.active() || b.active()
}

// NaiveBroadphase tests every pair.
type NaiveBroadphase struct{}

func (NaiveBroadphase) CollisionPairs(bodies []*Body) []Pair {
	var pairs []Pair
	for i := 0; i < len(bodies); i++ {
		ai := bodies[i].AABB()
		for j := i + 1; j < len(bodies); j++ {
			if !needsCollision(bodies[i], bodies[j]) {
				continue
			}
			if ai.Overlaps(bodies[j].AABB()) {
				pairs = append(pairs, makePair(bodies[i], bodies[j]))
			}
		}
	}
	return pairs
}

// SAPBroadphase sorts bodies along one axis and only tests bodies whose
// intervals on that axis overlap. With AutoDetectAxis the axis of largest
// positional variance is picked every call.
type SAPBroadphase struct {
	Axis           int
	AutoDetectAxis bool

	entries []sapEntry
}

type sapEntry struct {
	body *Body
	box  AABB
}

func NewSAPBroadphase() *SAPBroadphase {
	return &SAPBroadphase{AutoDetectAxis: true}
}

func (s *SAPBroadphase) CollisionPairs(bodies []*Body) []Pair {
	s.entries = s.entries[:0]
	for _, b := range bodies {
		s.entries = append(s.entries, sapEntry{body: b, box: b.AABB()})
	}
	if s.AutoDetectAxis {
		s.Axis = s.detectAxis()
	}
	axis := s.Axis
	slices.SortFunc(s.entries, func(a, b sapEntry) int {
		return cmp.Compare(a.box.Min[axis], b.box.Min[axis])
	})

	var pairs []Pair
	for i := range s.entries {
		ei := s.entries[i]
		for j := i + 1; j < len(s.entries); j++ {
			ej := s.entries[j]
			if ej.box.Min[axis] > ei.box.Max[axis] {
				break
			}
			if !needsCollision(ei.body, ej.body) {
				continue
			}
			if ei.box.Overlaps(ej.box) {
				pairs = append(pairs, makePair(ei.body, ej.body))
			}
		}
	}
	return pairs
}

// detectAxis picks the axis along which finite body centres spread the most.
func (s *SAPBroadphase) detectAxis() int {
	var sum, sumSq [3]float64
	n := 0
	for _, e := range s.entries {
		if e.body.Shape.Kind() == KindPlane {
			continue
		}
		for k := 0; k < 3; k++ {
			c := e.body.Position[k]
			sum[k] += c
			sumSq[k] += c * c
		}
		n++
	}
	if n < 2 {
		return s.Axis
	}
	best, bestVar := 0, -1.0
	for k := 0; k < 3; k++ {
		mean := sum[k] / float64(n)
		variance := sumSq[k]/float64(n) - mean*mean
		if variance > bestVar {
			best, bestVar = k, variance
		}
	}
	return best
}

// SortPairs orders pairs by body ID so different broadphases can be compared.
func SortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := cmp.Compare(a.A.ID, b.A.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.B.ID, b.B.ID)
	})
}
