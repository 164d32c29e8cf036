package web

import (
	"math"
	"strconv"
	"strings"

	"github.com/njchilds90/fixpoint-explorer/internal/explore"
)

const (
	plotWidth   = 640
	plotHeight  = 320
	plotPadding = 24
)

// Plot is an SVG line chart of sampled points. Gaps in the samples (skipped
// undefined values) split the line into segments. AxisX and AxisY are the
// pixel positions of z=0 and f=0, or -1 when outside the view.
type Plot struct {
	Width, Height      int
	Segments           []string
	AxisX, AxisY       float64
	MinZ, MaxZ         float64
	MinValue, MaxValue float64
	Samples, Requested int
}

func newPlot(pts []explore.Point, rng explore.Range) *Plot {
	p := &Plot{
		Width: plotWidth, Height: plotHeight,
		MinZ: rng.Min, MaxZ: rng.Max,
		Samples: len(pts), Requested: rng.Points,
		AxisX: -1, AxisY: -1,
	}
	if len(pts) == 0 {
		return p
	}
	lo, hi := pts[0].Value, pts[0].Value
	for _, pt := range pts[1:] {
		lo = math.Min(lo, pt.Value)
		hi = math.Max(hi, pt.Value)
	}
	if hi-lo < 1e-12 {
		lo, hi = lo-1, hi+1
	}
	p.MinValue, p.MaxValue = lo, hi

	innerW := float64(plotWidth - 2*plotPadding)
	innerH := float64(plotHeight - 2*plotPadding)
	px := func(z float64) float64 { return plotPadding + (z-rng.Min)/(rng.Max-rng.Min)*innerW }
	py := func(v float64) float64 { return plotPadding + (hi-v)/(hi-lo)*innerH }

	if rng.Min <= 0 && 0 <= rng.Max {
		p.AxisX = px(0)
	}
	if lo <= 0 && 0 <= hi {
		p.AxisY = py(0)
	}

	step := (rng.Max - rng.Min) / float64(rng.Points-1)
	var seg strings.Builder
	flush := func() {
		if seg.Len() > 0 {
			p.Segments = append(p.Segments, seg.String())
			seg.Reset()
		}
	}
	for i, pt := range pts {
		if i > 0 && pt.Z-pts[i-1].Z > 1.5*step {
			flush()
		}
		if seg.Len() > 0 {
			seg.WriteByte(' ')
		}
		seg.WriteString(coord(px(pt.Z)))
		seg.WriteByte(',')
		seg.WriteString(coord(py(pt.Value)))
	}
	flush()
	return p
}

func coord(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
