package engine

import (
	"math"
	"slices"
	"sort"
)

// Table is a two-level aggregate: group -> key -> rounded mean percentage.
// Combinations without data are absent, never zero.
type Table map[string]map[string]int

// Cell returns the value at (group, key) and whether it exists.
func (t Table) Cell(group, key string) (int, bool) {
	row, ok := t[group]
	if !ok {
		return 0, false
	}
	v, ok := row[key]
	return v, ok
}

// Groups returns the table's group labels sorted.
func (t Table) Groups() []string {
	out := make([]string, 0, len(t))
	for g := range t {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

type meanAcc struct {
	sum Points
	n   int
}

func (m *meanAcc) add(v Points) {
	m.sum += v
	m.n++
}

// Integer sums keep the result exact and independent of input order; the
// mean is the only place a percentage is rounded.
func (m meanAcc) mean() int {
	return int(math.Round(float64(m.sum) / float64(m.n) / pointsPerPercent))
}

// AggregateByCategory averages section percentages per group. With nil
// sectionKeys every section present in the input is aggregated.
func AggregateByCategory(responses []Scored, category CategoryFunc, sectionKeys []string) Table {
	acc := make(map[string]map[string]*meanAcc)
	for _, r := range responses {
		group := category(r)
		for key, pct := range r.Sections {
			if sectionKeys != nil && !slices.Contains(sectionKeys, key) {
				continue
			}
			row, ok := acc[group]
			if !ok {
				row = make(map[string]*meanAcc)
				acc[group] = row
			}
			if row[key] == nil {
				row[key] = &meanAcc{}
			}
			row[key].add(pct)
		}
	}
	return collapse(acc)
}

// AggregateByTwoCategories averages overall percentages per (A, B) pair.
func AggregateByTwoCategories(responses []Scored, categoryA, categoryB CategoryFunc) Table {
	acc := make(map[string]map[string]*meanAcc)
	for _, r := range responses {
		if !r.HasOverall {
			continue
		}
		a, b := categoryA(r), categoryB(r)
		row, ok := acc[a]
		if !ok {
			row = make(map[string]*meanAcc)
			acc[a] = row
		}
		if row[b] == nil {
			row[b] = &meanAcc{}
		}
		row[b].add(r.Overall)
	}
	return collapse(acc)
}

// SectionAverages is the cross-group mean per section.
func SectionAverages(responses []Scored, sectionKeys []string) map[string]int {
	all := func(Scored) string { return "" }
	return AggregateByCategory(responses, all, sectionKeys)[""]
}

// OverallAverage is the mean overall percentage across responses.
func OverallAverage(responses []Scored) Percent {
	var m meanAcc
	for _, r := range responses {
		if r.HasOverall {
			m.add(r.Overall)
		}
	}
	if m.n == 0 {
		return Percent{}
	}
	return Some(m.mean())
}

// GroupCounts counts responses per group label.
func GroupCounts(responses []Scored, category CategoryFunc) map[string]int {
	out := make(map[string]int)
	for _, r := range responses {
		out[category(r)]++
	}
	return out
}

func collapse(acc map[string]map[string]*meanAcc) Table {
	out := make(Table, len(acc))
	for group, row := range acc {
		cells := make(map[string]int, len(row))
		for key, m := range row {
			cells[key] = m.mean()
		}
		out[group] = cells
	}
	return out
}
