package activity

import (
	"sort"
	"time"

	"offio/backend/internal/model"
)

// ProgramMinutes per-hour focus time of one program
type ProgramMinutes struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

// HourBucket one hour of the session timeline
type HourBucket struct {
	Hour          int              `json:"hour"`
	ActiveMinutes int              `json:"active_minutes"`
	Programs      []ProgramMinutes `json:"programs"`
	Excluded      bool             `json:"excluded"`
	ExcludeReason *string          `json:"exclude_reason"`
}

// BuildTimeline buckets samples by the hour of their start time; only hours
// with at least one sample appear. ActiveMinutes counts non-excluded samples
// that saw any action. An hour holding any excluded sample is marked
// excluded with the first reason met. Program minutes come from the
// non-excluded samples' window usage, each row rounded to whole minutes and
// merged by name.
func BuildTimeline(logs []model.ActivityLog, usages []model.WindowUsage, loc *time.Location) []HourBucket {
	sorted := append([]model.ActivityLog(nil), logs...)
	SortSamples(sorted)

	usageByLog := make(map[int64][]model.WindowUsage)
	for _, u := range usages {
		usageByLog[u.ActivityLogID] = append(usageByLog[u.ActivityLogID], u)
	}

	buckets := make(map[int]*HourBucket)
	programIndex := make(map[int]map[string]int)

	for i := range sorted {
		l := &sorted[i]
		hour := l.StartTime.In(loc).Hour()

		b, ok := buckets[hour]
		if !ok {
			b = &HourBucket{Hour: hour, Programs: []ProgramMinutes{}}
			buckets[hour] = b
			programIndex[hour] = make(map[string]int)
		}

		if l.IsExcluded {
			if !b.Excluded {
				b.Excluded = true
				b.ExcludeReason = l.ExcludeReason
			}
			continue
		}

		if clamp(l.ActionCount) > 0 {
			b.ActiveMinutes++
		}

		for _, u := range usageByLog[l.ID] {
			minutes := roundHalfUp(float64(clamp(u.FocusSeconds)) / 60)
			if idx, ok := programIndex[hour][u.ProgramName]; ok {
				b.Programs[idx].Minutes += minutes
				continue
			}
			programIndex[hour][u.ProgramName] = len(b.Programs)
			b.Programs = append(b.Programs, ProgramMinutes{Name: u.ProgramName, Minutes: minutes})
		}
	}

	timeline := make([]HourBucket, 0, len(buckets))
	for _, b := range buckets {
		timeline = append(timeline, *b)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Hour < timeline[j].Hour })
	return timeline
}
