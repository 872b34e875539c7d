package activity

import (
	"sort"
	"strconv"
	"time"

	"offio/backend/internal/model"
)

// DefaultExcludeReason shown when an excluded sample carries no reason
const DefaultExcludeReason = "제외됨"

// ExcludedRange contiguous excluded interval in HH:MM clock time
type ExcludedRange struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
	Manual    bool   `json:"manual"`
}

// ClockHHMM zero-padded HH:MM of t in loc
func ClockHHMM(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

type timedRange struct {
	start time.Time
	r     ExcludedRange
}

func sampleRanges(logs []model.ActivityLog, loc *time.Location) []timedRange {
	var out []timedRange
	for i := range logs {
		l := &logs[i]
		if !l.IsExcluded {
			continue
		}
		reason := DefaultExcludeReason
		if l.ExcludeReason != nil && *l.ExcludeReason != "" {
			reason = *l.ExcludeReason
		}
		out = append(out, timedRange{start: l.StartTime, r: ExcludedRange{
			ID:        strconv.FormatInt(l.ID, 10),
			StartTime: ClockHHMM(l.StartTime, loc),
			EndTime:   ClockHHMM(l.EndTime, loc),
			Reason:    reason,
		}})
	}
	return out
}

func manualRanges(rows []model.ExcludedRange, loc *time.Location) []timedRange {
	out := make([]timedRange, 0, len(rows))
	for _, row := range rows {
		out = append(out, timedRange{start: row.StartTime, r: ExcludedRange{
			ID:        "m" + strconv.FormatInt(row.RangeID, 10),
			StartTime: ClockHHMM(row.StartTime, loc),
			EndTime:   ClockHHMM(row.EndTime, loc),
			Reason:    row.Reason,
			Manual:    true,
		}})
	}
	return out
}

func orderedRanges(parts ...[]timedRange) []ExcludedRange {
	var all []timedRange
	for _, p := range parts {
		all = append(all, p...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].start.Before(all[j].start) })

	out := make([]ExcludedRange, 0, len(all))
	for _, t := range all {
		out = append(out, t.r)
	}
	return out
}

// MergeExcludedRanges collapses runs of excluded samples, in start-time
// order, into ranges. Two neighbours merge only when one ends where the
// next starts and their reasons match.
func MergeExcludedRanges(logs []model.ActivityLog, loc *time.Location) []ExcludedRange {
	return MergeRanges(orderedRanges(sampleRanges(logs, loc)))
}

// CombineExcludedRanges merges sample-derived and user-authored ranges into
// one ordered list.
func CombineExcludedRanges(logs []model.ActivityLog, manual []model.ExcludedRange, loc *time.Location) []ExcludedRange {
	return MergeRanges(orderedRanges(sampleRanges(logs, loc), manualRanges(manual, loc)))
}

// MergeRanges merges neighbours of an ordered range list when the first
// ends where the second starts and the reasons match. Applying it to its
// own output changes nothing.
func MergeRanges(ranges []ExcludedRange) []ExcludedRange {
	merged := make([]ExcludedRange, 0, len(ranges))
	for _, r := range ranges {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.EndTime == r.StartTime && last.Reason == r.Reason {
				last.EndTime = r.EndTime
				last.Manual = last.Manual && r.Manual
				continue
			}
		}
		merged = append(merged, r)
	}
	return merged
}
