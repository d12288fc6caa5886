// Package timeline materializes retrospective emotion series for charting.
package timeline

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/easeaico/classroom-pulse/internal/metrics"
	"github.com/easeaico/classroom-pulse/internal/types"
)

const (
	// Window is the span covered by one series.
	Window = 30 * time.Minute
	// Interval is the spacing between points.
	Interval = 2 * time.Minute
	// walkStep bounds how far a synthetic field moves between adjacent points.
	walkStep = 3
	// startJitter bounds how far a roster-backed series starts from the synthetic baseline.
	startJitter = 8
)

// Points is the number of samples in a series.
const Points = int(Window / Interval)

var baseline = [6]int{25, 30, 25, 10, 5, 5}

// Generator produces emotion timelines. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a Generator. A nil now defaults to time.Now.
func NewGenerator(rng *rand.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

// Generate returns Points samples ending at now. With online students the series converges on
// their live distribution; otherwise it is a synthetic random walk.
func (g *Generator) Generate(roster []types.Student) []types.EmotionDataPoint {
	live := metrics.Aggregate(roster)
	var values [][6]int
	if live.OnlineStudents > 0 {
		values = g.converge(distributionPercentages(live))
	} else {
		values = g.walk()
	}

	end := g.now()
	points := make([]types.EmotionDataPoint, len(values))
	for i, v := range values {
		points[i] = toPoint(end.Add(-time.Duration(len(values)-1-i)*Interval), v)
	}
	return points
}

func (g *Generator) walk() [][6]int {
	out := make([][6]int, Points)
	current := baseline
	for i := range out {
		if i > 0 {
			var raw [6]float64
			for k := range current {
				raw[k] = float64(max(0, current[k]+g.rng.IntN(2*walkStep+1)-walkStep))
			}
			current = normalize(raw)
		}
		out[i] = current
	}
	return out
}

func (g *Generator) converge(target [6]int) [][6]int {
	var start [6]float64
	for k := range start {
		start[k] = float64(max(0, baseline[k]+g.rng.IntN(2*startJitter+1)-startJitter))
	}
	startPct := normalize(start)

	out := make([][6]int, Points)
	for i := range out {
		if i == Points-1 {
			out[i] = target
			break
		}
		progress := float64(i) / float64(Points-1)
		// Noise shrinks as the series approaches the live reading.
		noise := float64(walkStep) * (1 - progress)
		var raw [6]float64
		for k := range raw {
			v := float64(startPct[k]) + (float64(target[k])-float64(startPct[k]))*progress
			v += (g.rng.Float64()*2 - 1) * noise
			raw[k] = max(0, v)
		}
		out[i] = normalize(raw)
	}
	return out
}

func distributionPercentages(m types.ClassMetrics) [6]int {
	var raw [6]float64
	for k, e := range types.AllEmotions() {
		raw[k] = float64(m.EmotionDistribution[e])
	}
	return normalize(raw)
}

// normalize scales raw to integers summing to exactly 100 using largest remainders.
// An all-zero input falls back to the baseline.
func normalize(raw [6]float64) [6]int {
	total := 0.0
	for _, v := range raw {
		total += v
	}
	if total <= 0 {
		return baseline
	}

	var out [6]int
	type remainder struct {
		idx  int
		frac float64
	}
	rems := make([]remainder, 0, len(raw))
	assigned := 0
	for k, v := range raw {
		exact := v * 100 / total
		out[k] = int(exact)
		assigned += out[k]
		rems = append(rems, remainder{idx: k, frac: exact - float64(out[k])})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; assigned < 100; i++ {
		out[rems[i%len(rems)].idx]++
		assigned++
	}
	return out
}

func toPoint(ts time.Time, v [6]int) types.EmotionDataPoint {
	return types.EmotionDataPoint{
		Timestamp:  ts,
		Happy:      v[0],
		Engaged:    v[1],
		Neutral:    v[2],
		Confused:   v[3],
		Bored:      v[4],
		Frustrated: v[5],
	}
}
