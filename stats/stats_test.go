package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderSummary(t *testing.T) {
	r := NewRecorder(4)
	r.Record(0.010, 1)
	r.Record(0.020, 5)
	r.Record(0.030, 3)

	s := r.Summary()
	assert.Equal(t, 3, s.Frames)
	assert.InDelta(t, 20, s.AvgFrameMs, 1e-9)
	assert.InDelta(t, 30, s.MaxFrameMs, 1e-9)
	assert.Equal(t, 5, s.PeakObjects)
}

func TestRecorderRingKeepsNewest(t *testing.T) {
	r := NewRecorder(3)
	for i := 1; i <= 5; i++ {
		r.Record(float64(i)/1000, i)
	}
	assert.Equal(t, []float64{3, 4, 5}, r.ordered(r.objects))
	assert.Equal(t, 5, r.Summary().Frames)
}

func TestDownsample(t *testing.T) {
	data := []float64{1, 1, 3, 3, 5, 5}
	assert.Equal(t, []float64{1, 3, 5}, Downsample(data, 3))
	assert.Equal(t, data, Downsample(data, 10))
}

func TestPlot(t *testing.T) {
	var sb strings.Builder
	r := NewRecorder(0)
	require.NoError(t, r.Plot(&sb))
	assert.Contains(t, sb.String(), "no frames")

	sb.Reset()
	for i := 0; i < 200; i++ {
		r.Record(1.0/60, i/10)
	}
	require.NoError(t, r.Plot(&sb))
	out := sb.String()
	assert.Contains(t, out, "200 frames")
	assert.Contains(t, out, "frame time (ms)")
	assert.Contains(t, out, "live objects")
}
