package activity

// SupportedIntervals graph granularities in minutes
var SupportedIntervals = []int{1, 5, 10, 30, 60}

// ValidInterval reports whether n is a supported granularity
func ValidInterval(n int) bool {
	for _, v := range SupportedIntervals {
		if v == n {
			return true
		}
	}
	return false
}

// Aggregate groups points into consecutive positional chunks of interval
// points; the last chunk may be shorter. Chunks are not aligned to clock
// boundaries. Counters are summed, scores averaged and rounded, and the
// chunk's time comes from its first point. An interval of 1 or less returns
// the input unchanged.
func Aggregate(points []Point, interval int) []Point {
	if interval <= 1 {
		return points
	}

	result := make([]Point, 0, (len(points)+interval-1)/interval)
	for i := 0; i < len(points); i += interval {
		chunk := points[i:min(i+interval, len(points))]
		head := chunk[0]

		agg := Point{
			ID:         head.ID,
			Time:       head.Time,
			Hour:       head.Hour,
			Minute:     head.Minute,
			IsExcluded: true,
		}
		var kb, ms, tot int
		for _, p := range chunk {
			agg.KeyboardCount += p.KeyboardCount
			agg.MouseClickCount += p.MouseClickCount
			agg.MouseDistance += p.MouseDistance
			kb += p.KeyboardActiveSeconds
			ms += p.MouseActiveSeconds
			tot += p.TotalActiveSeconds
			agg.IsExcluded = agg.IsExcluded && p.IsExcluded
		}
		n := float64(len(chunk))
		agg.KeyboardActiveSeconds = roundHalfUp(float64(kb) / n)
		agg.MouseActiveSeconds = roundHalfUp(float64(ms) / n)
		agg.TotalActiveSeconds = roundHalfUp(float64(tot) / n)

		result = append(result, agg)
	}
	return result
}

// Field selects which score AverageActivity reads
type Field int

const (
	FieldKeyboard Field = iota
	FieldMouse
	FieldTotal
)

func (f Field) of(p *Point) int {
	switch f {
	case FieldKeyboard:
		return p.KeyboardActiveSeconds
	case FieldMouse:
		return p.MouseActiveSeconds
	default:
		return p.TotalActiveSeconds
	}
}

// AverageActivity mean percentage over points whose field is positive.
// Idle and excluded points stay out of the denominator, so the figure
// reflects intensity while active. Returns 0 when no point qualifies.
func AverageActivity(points []Point, field Field) int {
	sum, n := 0, 0
	for i := range points {
		if v := field.of(&points[i]); v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return roundHalfUp(float64(sum) / float64(n) / WindowSeconds * 100)
}

// TotalInputs keyboard plus click events across all points, excluded included
func TotalInputs(points []Point) int {
	total := 0
	for i := range points {
		total += points[i].KeyboardCount + points[i].MouseClickCount
	}
	return total
}

// Summary headline statistics for one session
type Summary struct {
	AverageKeyboard int `json:"average_keyboard"`
	AverageMouse    int `json:"average_mouse"`
	AverageTotal    int `json:"average_total"`
	TotalInputs     int `json:"total_inputs"`
}

// Summarize computes Summary from unaggregated points
func Summarize(points []Point) Summary {
	return Summary{
		AverageKeyboard: AverageActivity(points, FieldKeyboard),
		AverageMouse:    AverageActivity(points, FieldMouse),
		AverageTotal:    AverageActivity(points, FieldTotal),
		TotalInputs:     TotalInputs(points),
	}
}
