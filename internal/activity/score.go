// Package activity turns raw agent samples into graph points, hourly
// timelines, program rankings and excluded-time ranges.
//
// Every function is pure. Samples come from an untrusted desktop agent, so
// negative counters are clamped to zero instead of rejected.
package activity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"offio/backend/internal/model"
)

// WindowSeconds length of one sample window the scores are expressed against
const WindowSeconds = 60

// Scoring heuristic divisors turning raw counters into "active seconds".
// The defaults reproduce the desktop agent's historical numbers.
type Scoring struct {
	KeyPressDivisor float64
	ClickWeight     float64
	DistanceDivisor float64
	ActionDivisor   float64
}

// DefaultScoring keyPress/3, clicks*3 + distance/50, action/1.5
var DefaultScoring = Scoring{
	KeyPressDivisor: 3,
	ClickWeight:     3,
	DistanceDivisor: 50,
	ActionDivisor:   1.5,
}

// Point one graph data point: a single sample, or a chunk of samples after
// Aggregate.
type Point struct {
	ID                    int64  `json:"id"`
	Time                  string `json:"time"`
	Hour                  int    `json:"hour"`
	Minute                int    `json:"minute"`
	KeyboardCount         int    `json:"keyboard_count"`
	MouseClickCount       int    `json:"mouse_click_count"`
	MouseDistance         int    `json:"mouse_distance"`
	KeyboardActiveSeconds int    `json:"keyboard_active_seconds"`
	MouseActiveSeconds    int    `json:"mouse_active_seconds"`
	TotalActiveSeconds    int    `json:"total_active_seconds"`
	IsExcluded            bool   `json:"is_excluded"`
}

// roundHalfUp rounds x >= 0 to the nearest integer, halves going up
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// KeyboardSeconds min(60, round(keyPress / KeyPressDivisor))
func (s Scoring) KeyboardSeconds(keyPress int) int {
	return min(WindowSeconds, roundHalfUp(float64(clamp(keyPress))/s.KeyPressDivisor))
}

// MouseSeconds min(60, round(clicks*ClickWeight + distance/DistanceDivisor))
func (s Scoring) MouseSeconds(clicks, distance int) int {
	v := float64(clamp(clicks))*s.ClickWeight + float64(clamp(distance))/s.DistanceDivisor
	return min(WindowSeconds, roundHalfUp(v))
}

// TotalSeconds 0 without actions, else min(60, round(action / ActionDivisor))
func (s Scoring) TotalSeconds(action int) int {
	action = clamp(action)
	if action == 0 {
		return 0
	}
	return min(WindowSeconds, roundHalfUp(float64(action)/s.ActionDivisor))
}

// SortSamples orders samples by start time in place, keeping storage order
// for equal starts.
func SortSamples(logs []model.ActivityLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].StartTime.Before(logs[j].StartTime)
	})
}

// Points scores every sample in start-time order. Excluded samples keep
// their raw counters but carry zero scores.
func (s Scoring) Points(logs []model.ActivityLog, loc *time.Location) []Point {
	sorted := append([]model.ActivityLog(nil), logs...)
	SortSamples(sorted)

	points := make([]Point, 0, len(sorted))
	for i := range sorted {
		l := &sorted[i]
		t := l.StartTime.In(loc)
		p := Point{
			ID:              l.ID,
			Time:            fmt.Sprintf("%d:%02d", t.Hour(), t.Minute()),
			Hour:            t.Hour(),
			Minute:          t.Minute(),
			KeyboardCount:   clamp(l.KeyboardCount),
			MouseClickCount: clamp(l.MouseClickCount),
			MouseDistance:   clamp(l.MouseDistance),
			IsExcluded:      l.IsExcluded,
		}
		if !l.IsExcluded {
			p.KeyboardActiveSeconds = s.KeyboardSeconds(l.KeyPressCount)
			p.MouseActiveSeconds = s.MouseSeconds(l.MouseClickCount, l.MouseDistance)
			p.TotalActiveSeconds = s.TotalSeconds(l.ActionCount)
		}
		points = append(points, p)
	}
	return points
}

// ActiveSeconds sum of durations of non-excluded samples
func ActiveSeconds(logs []model.ActivityLog) int {
	total := 0
	for i := range logs {
		if !logs[i].IsExcluded {
			total += clamp(logs[i].DurationSeconds)
		}
	}
	return total
}
