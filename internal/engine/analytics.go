package engine

import (
	"sort"
	"strings"
	"time"
)

// Filters narrows the response set an analytics snapshot is computed over.
// Empty fields do not filter.
type Filters struct {
	Company    string    `json:"company,omitempty"`
	Department string    `json:"department,omitempty"`
	From       time.Time `json:"from,omitempty"`
	To         time.Time `json:"to,omitempty"`
}

// Thresholds configures insight detection.
type Thresholds struct {
	DepartmentGap    int
	DepartmentGapMax int
	ProblemAreas     int
	AlertSection     string
	Alert            int
	Perception       int
	RolesA           []string
	RolesB           []string
}

// DefaultThresholds returns the conventional detection settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DepartmentGap:    15,
		DepartmentGapMax: 5,
		ProblemAreas:     3,
		AlertSection:     "speaking_up",
		Alert:            60,
		Perception:       10,
		RolesA:           []string{"Executive", "Senior Leadership", "Director", "Manager"},
		RolesB:           []string{"Individual Contributor", "Staff", "Team Member"},
	}
}

// Rejection records a response excluded because its stored scores were malformed.
type Rejection struct {
	ResponseID string `json:"response_id"`
	Reason     string `json:"reason"`
}

// Snapshot is everything the presentation layer needs for one filter set.
type Snapshot struct {
	Filters           Filters          `json:"filters"`
	ResponseCount     int              `json:"response_count"`
	OverallAverage    Percent          `json:"overall_average"`
	SectionAverages   map[string]int   `json:"section_averages"`
	DepartmentSection Table            `json:"department_section"`
	RoleSection       Table            `json:"role_section"`
	CompanySection    Table            `json:"company_section"`
	DepartmentRole    Table            `json:"department_role"`
	DepartmentCounts  map[string]int   `json:"department_counts"`
	RoleCounts        map[string]int   `json:"role_counts"`
	ProblemAreas      []SectionFinding `json:"problem_areas"`
	DepartmentGaps    []GroupGap       `json:"department_gaps"`
	Alerts            []Alert          `json:"alerts"`
	PerceptionGaps    []PerceptionGap  `json:"perception_gaps"`
	Rejected          []Rejection      `json:"rejected,omitempty"`
}

// Ingest normalizes completed records. Incomplete records are skipped; records
// with malformed scores are returned as RecordErrors and left out.
func Ingest(records []Record) ([]Scored, []*RecordError) {
	scored := make([]Scored, 0, len(records))
	var rejected []*RecordError
	for _, rec := range records {
		if rec.CompletedAt == nil {
			continue
		}
		s, err := ingestOne(rec)
		if err != nil {
			rejected = append(rejected, &RecordError{ResponseID: rec.ID, Err: err})
			continue
		}
		scored = append(scored, s)
	}
	return scored, rejected
}

func ingestOne(rec Record) (Scored, error) {
	sections := make(map[string]Points, len(rec.SectionScores))
	for key, raw := range rec.SectionScores {
		score, err := ParseSectionScore(raw)
		if err != nil {
			return Scored{}, err
		}
		pts, ok, err := NormalizePoints(score)
		if err != nil {
			return Scored{}, err
		}
		if ok {
			sections[key] = pts
		}
	}
	overall, hasOverall, err := NormalizePoints(ParseOverallScore(rec.OverallScore))
	if err != nil {
		return Scored{}, err
	}
	return Scored{
		ID:          rec.ID,
		Department:  rec.Department,
		Role:        rec.Role,
		Company:     rec.Company,
		CompanySize: rec.CompanySize,
		Sections:    sections,
		Overall:     overall,
		HasOverall:  hasOverall,
		CompletedAt: *rec.CompletedAt,
	}, nil
}

// Match reports whether a completed record passes the filters.
func (f Filters) Match(rec Record) bool {
	if rec.CompletedAt == nil {
		return false
	}
	if f.Company != "" && !strings.EqualFold(labelOrUnknown(rec.Company), f.Company) {
		return false
	}
	if f.Department != "" && !strings.EqualFold(labelOrUnknown(rec.Department), f.Department) {
		return false
	}
	if !f.From.IsZero() && rec.CompletedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && rec.CompletedAt.After(f.To) {
		return false
	}
	return true
}

// ComputeAnalytics recomputes every aggregate and insight from scratch for the
// given filters. sectionKeys fixes section order; nil uses every section seen.
func ComputeAnalytics(records []Record, sectionKeys []string, filters Filters, th Thresholds) Snapshot {
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if filters.Match(rec) {
			filtered = append(filtered, rec)
		}
	}

	scored, errs := Ingest(filtered)
	if sectionKeys == nil {
		sectionKeys = seenSections(scored)
	}

	deptSection := AggregateByCategory(scored, ByDepartment, sectionKeys)
	averages := SectionAverages(scored, sectionKeys)

	snap := Snapshot{
		Filters:           filters,
		ResponseCount:     len(scored),
		OverallAverage:    OverallAverage(scored),
		SectionAverages:   averages,
		DepartmentSection: deptSection,
		RoleSection:       AggregateByCategory(scored, ByRole, sectionKeys),
		CompanySection:    AggregateByCategory(scored, ByCompany, sectionKeys),
		DepartmentRole:    AggregateByTwoCategories(scored, ByDepartment, ByRole),
		DepartmentCounts:  GroupCounts(scored, ByDepartment),
		RoleCounts:        GroupCounts(scored, ByRole),
		ProblemAreas:      ProblemAreas(averages, th.ProblemAreas),
		DepartmentGaps:    DepartmentGaps(deptSection, sectionKeys, th.DepartmentGap, th.DepartmentGapMax),
		PerceptionGaps:    PerceptionGaps(scored, th.RolesA, th.RolesB, sectionKeys, th.Perception),
	}
	if th.AlertSection != "" {
		snap.Alerts = SubThresholdAlerts(deptSection, th.AlertSection, th.Alert)
	}
	for _, e := range errs {
		snap.Rejected = append(snap.Rejected, Rejection{ResponseID: e.ResponseID, Reason: e.Err.Error()})
	}
	return snap
}

func seenSections(scored []Scored) []string {
	seen := make(map[string]struct{})
	for _, s := range scored {
		for k := range s.Sections {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
