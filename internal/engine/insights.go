package engine

import (
	"math"
	"sort"
	"strings"
)

// SectionFinding is a section with its cross-group average.
type SectionFinding struct {
	Section string `json:"section"`
	Score   int    `json:"score"`
}

// GroupGap is the spread between the best and worst group on a section.
type GroupGap struct {
	Section   string `json:"section"`
	HighGroup string `json:"high_group"`
	HighScore int    `json:"high_score"`
	LowGroup  string `json:"low_group"`
	LowScore  int    `json:"low_score"`
	Gap       int    `json:"gap"`
}

// Alert flags a group scoring below the threshold on a watched section.
type Alert struct {
	Section string `json:"section"`
	Group   string `json:"group"`
	Score   int    `json:"score"`
}

// PerceptionGap compares two role classes on one section. Gap is A minus B.
type PerceptionGap struct {
	Section    string `json:"section"`
	GroupAMean int    `json:"group_a_mean"`
	GroupBMean int    `json:"group_b_mean"`
	Gap        int    `json:"gap"`
}

// ProblemAreas returns the n lowest-scoring sections, worst first.
func ProblemAreas(sectionAverages map[string]int, n int) []SectionFinding {
	out := make([]SectionFinding, 0, len(sectionAverages))
	for key, score := range sectionAverages {
		out = append(out, SectionFinding{Section: key, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Section < out[j].Section
		}
		return out[i].Score < out[j].Score
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DepartmentGaps reports, per section, the spread between the highest and lowest
// group when it exceeds threshold. At least two groups need data for a section.
// Results are sorted by gap descending and capped at limit.
func DepartmentGaps(table Table, sectionKeys []string, threshold, limit int) []GroupGap {
	groups := table.Groups()
	var out []GroupGap
	for _, key := range sectionKeys {
		type cell struct {
			group string
			score int
		}
		var cells []cell
		for _, g := range groups {
			if v, ok := table.Cell(g, key); ok {
				cells = append(cells, cell{g, v})
			}
		}
		if len(cells) < 2 {
			continue
		}
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].score > cells[j].score })
		high, low := cells[0], cells[len(cells)-1]
		gap := high.score - low.score
		if gap <= threshold {
			continue
		}
		out = append(out, GroupGap{
			Section:   key,
			HighGroup: high.group,
			HighScore: high.score,
			LowGroup:  low.group,
			LowScore:  low.score,
			Gap:       gap,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Gap > out[j].Gap })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SubThresholdAlerts lists groups scoring below threshold on section, worst first.
func SubThresholdAlerts(table Table, section string, threshold int) []Alert {
	var out []Alert
	for _, g := range table.Groups() {
		if v, ok := table.Cell(g, section); ok && v < threshold {
			out = append(out, Alert{Section: section, Group: g, Score: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

// PerceptionGaps compares the mean section scores of two role sets, computed
// directly from responses. Role labels match case-insensitively.
func PerceptionGaps(responses []Scored, rolesA, rolesB []string, sectionKeys []string, threshold int) []PerceptionGap {
	var setA, setB []Scored
	for _, r := range responses {
		switch {
		case matchesRole(r.Role, rolesA):
			setA = append(setA, r)
		case matchesRole(r.Role, rolesB):
			setB = append(setB, r)
		}
	}
	meansA := SectionAverages(setA, sectionKeys)
	meansB := SectionAverages(setB, sectionKeys)

	var out []PerceptionGap
	for _, key := range sectionKeys {
		a, okA := meansA[key]
		b, okB := meansB[key]
		if !okA || !okB {
			continue
		}
		gap := a - b
		if abs(gap) <= threshold {
			continue
		}
		out = append(out, PerceptionGap{Section: key, GroupAMean: a, GroupBMean: b, Gap: gap})
	}
	sort.SliceStable(out, func(i, j int) bool { return abs(out[i].Gap) > abs(out[j].Gap) })
	return out
}

func matchesRole(role string, set []string) bool {
	role = strings.TrimSpace(role)
	if role == "" {
		return false
	}
	for _, s := range set {
		if strings.EqualFold(role, strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func abs(v int) int {
	return int(math.Abs(float64(v)))
}
