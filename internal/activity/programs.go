package activity

import (
	"sort"

	"offio/backend/internal/model"
)

// ProgramUsage total focus time for one program
type ProgramUsage struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
}

// RankPrograms groups focus seconds by program name and sorts by total
// seconds, largest first. Ties keep first-seen order.
func RankPrograms(usages []model.WindowUsage) []ProgramUsage {
	index := make(map[string]int)
	var ranked []ProgramUsage
	for i := range usages {
		u := &usages[i]
		idx, ok := index[u.ProgramName]
		if !ok {
			idx = len(ranked)
			index[u.ProgramName] = idx
			ranked = append(ranked, ProgramUsage{Name: u.ProgramName})
		}
		ranked[idx].Seconds += clamp(u.FocusSeconds)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Seconds > ranked[j].Seconds
	})
	for i := range ranked {
		ranked[i].Minutes = roundHalfUp(float64(ranked[i].Seconds) / 60)
	}
	return ranked
}

// ProgramShare percentage of totalMinutes, 0 when nothing was recorded
func ProgramShare(minutes, totalMinutes int) int {
	if totalMinutes <= 0 {
		return 0
	}
	return roundHalfUp(float64(minutes) / float64(totalMinutes) * 100)
}

// TotalMinutes sum of per-program minutes, the denominator for ProgramShare
func TotalMinutes(programs []ProgramUsage) int {
	total := 0
	for _, p := range programs {
		total += p.Minutes
	}
	return total
}
