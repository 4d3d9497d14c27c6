// Package stats records per-frame timings and object counts and renders them
// as terminal plots when the playground exits.
package stats

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
)

const plotWidth = 80

// Recorder keeps the most recent samples in a ring buffer.
type Recorder struct {
	capacity  int
	frameMs   []float64
	objects   []float64
	next      int
	total     int
	maxMs     float64
	sumMs     float64
	peakCount int
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 3600
	}
	return &Recorder{
		capacity: capacity,
		frameMs:  make([]float64, 0, capacity),
		objects:  make([]float64, 0, capacity),
	}
}

// Record adds one frame. delta is in seconds.
func (r *Recorder) Record(delta float64, objects int) {
	ms := delta * 1000
	if len(r.frameMs) < r.capacity {
		r.frameMs = append(r.frameMs, ms)
		r.objects = append(r.objects, float64(objects))
	} else {
		r.frameMs[r.next] = ms
		r.objects[r.next] = float64(objects)
	}
	r.next = (r.next + 1) % r.capacity
	r.total++
	r.sumMs += ms
	r.maxMs = max(r.maxMs, ms)
	r.peakCount = max(r.peakCount, objects)
}

type Summary struct {
	Frames      int
	AvgFrameMs  float64
	MaxFrameMs  float64
	PeakObjects int
}

func (r *Recorder) Summary() Summary {
	s := Summary{Frames: r.total, MaxFrameMs: r.maxMs, PeakObjects: r.peakCount}
	if r.total > 0 {
		s.AvgFrameMs = r.sumMs / float64(r.total)
	}
	return s
}

// ordered returns the retained samples oldest first.
func (r *Recorder) ordered(src []float64) []float64 {
	if len(src) < r.capacity {
		return append([]float64(nil), src...)
	}
	out := make([]float64, 0, len(src))
	out = append(out, src[r.next:]...)
	return append(out, src[:r.next]...)
}

// Plot writes frame time and object count graphs to w.
func (r *Recorder) Plot(w io.Writer) error {
	if r.total == 0 {
		_, err := fmt.Fprintln(w, "no frames recorded")
		return err
	}
	s := r.Summary()
	_, err := fmt.Fprintf(w, "%d frames, avg %.2f ms, max %.2f ms, peak %d objects\n\n",
		s.Frames, s.AvgFrameMs, s.MaxFrameMs, s.PeakObjects)
	if err != nil {
		return err
	}
	for _, g := range []struct {
		data    []float64
		caption string
	}{
		{r.ordered(r.frameMs), "frame time (ms)"},
		{r.ordered(r.objects), "live objects"},
	} {
		graph := asciigraph.Plot(Downsample(g.data, plotWidth),
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(g.caption),
		)
		if _, err := fmt.Fprintf(w, "%s\n\n", graph); err != nil {
			return err
		}
	}
	return nil
}

// Downsample averages data into at most n buckets.
func Downsample(data []float64, n int) []float64 {
	if len(data) <= n || n <= 0 {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(data) / n
		hi := (i + 1) * len(data) / n
		sum := 0.0
		for _, v := range data[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
