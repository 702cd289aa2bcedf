package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// FormatSummary renders a snapshot as a plain-text data block for an external
// report generator. Absent cells render as "-". sections supplies display names
// and order; with none, section keys are listed alphabetically.
func FormatSummary(snap Snapshot, sections []Section) string {
	names := make(map[string]string, len(sections))
	order := make([]string, 0, len(sections))
	for _, s := range sections {
		names[s.Key] = s.Name
		order = append(order, s.Key)
	}
	if len(order) == 0 {
		order = slices.Sorted(maps.Keys(snap.SectionAverages))
	}
	name := func(key string) string {
		if n := names[key]; n != "" {
			return n
		}
		return key
	}

	var b strings.Builder
	fmt.Fprintf(&b, "RESPONSES: %d\n", snap.ResponseCount)
	fmt.Fprintf(&b, "OVERALL SCORE: %s\n", snap.OverallAverage)

	b.WriteString("\nSECTION SCORES:\n")
	for _, key := range order {
		fmt.Fprintf(&b, "- %s: %s\n", name(key), cellString(snap.SectionAverages, key))
	}

	b.WriteString("\nDEPARTMENT SCORES:\n")
	for _, dept := range snap.DepartmentSection.Groups() {
		parts := make([]string, 0, len(order))
		for _, key := range order {
			parts = append(parts, fmt.Sprintf("%s %s", name(key), cellString(snap.DepartmentSection[dept], key)))
		}
		fmt.Fprintf(&b, "- %s (n=%d): %s\n", dept, snap.DepartmentCounts[dept], strings.Join(parts, ", "))
	}

	if len(snap.ProblemAreas) > 0 {
		b.WriteString("\nLOWEST SECTIONS:\n")
		for _, p := range snap.ProblemAreas {
			fmt.Fprintf(&b, "- %s: %d%%\n", name(p.Section), p.Score)
		}
	}
	if len(snap.DepartmentGaps) > 0 {
		b.WriteString("\nDEPARTMENT GAPS:\n")
		for _, g := range snap.DepartmentGaps {
			fmt.Fprintf(&b, "- %s: %s %d%% vs %s %d%% (gap %d)\n",
				name(g.Section), g.HighGroup, g.HighScore, g.LowGroup, g.LowScore, g.Gap)
		}
	}
	if len(snap.Alerts) > 0 {
		b.WriteString("\nALERTS:\n")
		for _, a := range snap.Alerts {
			fmt.Fprintf(&b, "- %s in %s: %d%%\n", name(a.Section), a.Group, a.Score)
		}
	}
	if len(snap.PerceptionGaps) > 0 {
		b.WriteString("\nLEADERSHIP VS STAFF:\n")
		for _, p := range snap.PerceptionGaps {
			fmt.Fprintf(&b, "- %s: leadership %d%%, staff %d%% (gap %+d)\n",
				name(p.Section), p.GroupAMean, p.GroupBMean, p.Gap)
		}
	}
	return b.String()
}

func cellString(row map[string]int, key string) string {
	if v, ok := row[key]; ok {
		return fmt.Sprintf("%d%%", v)
	}
	return "-"
}
