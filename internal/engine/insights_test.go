package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProblemAreas(t *testing.T) {
	averages := map[string]int{"a": 70, "b": 45, "c": 52, "d": 45, "e": 90}

	got := ProblemAreas(averages, 3)

	assert.Equal(t, []SectionFinding{
		{Section: "b", Score: 45},
		{Section: "d", Score: 45},
		{Section: "c", Score: 52},
	}, got)

	t.Run("fewer sections than limit", func(t *testing.T) {
		assert.Len(t, ProblemAreas(map[string]int{"a": 10}, 3), 1)
	})

	t.Run("no data", func(t *testing.T) {
		assert.Empty(t, ProblemAreas(nil, 3))
	})
}

func TestDepartmentGaps(t *testing.T) {
	t.Run("emits gap above threshold", func(t *testing.T) {
		table := Table{
			"A": {"speaking_up": 40},
			"B": {"speaking_up": 85},
		}

		got := DepartmentGaps(table, []string{"speaking_up"}, 15, 5)

		assert.Equal(t, []GroupGap{{
			Section:   "speaking_up",
			HighGroup: "B",
			HighScore: 85,
			LowGroup:  "A",
			LowScore:  40,
			Gap:       45,
		}}, got)
	})

	t.Run("gap equal to threshold is not reported", func(t *testing.T) {
		table := Table{"A": {"s": 50}, "B": {"s": 65}}

		assert.Empty(t, DepartmentGaps(table, []string{"s"}, 15, 5))
	})

	t.Run("needs two groups with data", func(t *testing.T) {
		table := Table{"A": {"s": 10}, "B": {"t": 90}}

		assert.Empty(t, DepartmentGaps(table, []string{"s", "t"}, 5, 5))
	})

	t.Run("sorted by gap and capped", func(t *testing.T) {
		table := Table{
			"A": {"s1": 10, "s2": 50, "s3": 30},
			"B": {"s1": 90, "s2": 70, "s3": 80},
			"C": {"s1": 50},
		}

		got := DepartmentGaps(table, []string{"s1", "s2", "s3"}, 10, 2)

		assert.Len(t, got, 2)
		assert.Equal(t, "s1", got[0].Section)
		assert.Equal(t, 80, got[0].Gap)
		assert.Equal(t, "s3", got[1].Section)
		assert.Equal(t, 50, got[1].Gap)
	})
}

func TestSubThresholdAlerts(t *testing.T) {
	table := Table{
		"Sales":   {"speaking_up": 58},
		"Ops":     {"speaking_up": 42},
		"Eng":     {"speaking_up": 60},
		"Finance": {"clarity": 10},
	}

	got := SubThresholdAlerts(table, "speaking_up", 60)

	assert.Equal(t, []Alert{
		{Section: "speaking_up", Group: "Ops", Score: 42},
		{Section: "speaking_up", Group: "Sales", Score: 58},
	}, got)
}

func TestPerceptionGaps(t *testing.T) {
	responses := []Scored{
		scored("e1", "", "Executive", 0, map[string]int{"x": 80, "y": 60}),
		scored("e2", "", "executive", 0, map[string]int{"x": 60, "y": 60}),
		scored("s1", "", "Staff", 0, map[string]int{"x": 50, "y": 55}),
		scored("s2", "", "Staff", 0, map[string]int{"x": 50}),
		scored("o1", "", "Contractor", 0, map[string]int{"x": 0}),
	}

	t.Run("signed gap above threshold", func(t *testing.T) {
		got := PerceptionGaps(responses, []string{"Executive"}, []string{"Staff"}, []string{"x", "y"}, 10)

		assert.Equal(t, []PerceptionGap{{Section: "x", GroupAMean: 70, GroupBMean: 50, Gap: 20}}, got)
	})

	t.Run("negative gap when staff score higher", func(t *testing.T) {
		got := PerceptionGaps(responses, []string{"Staff"}, []string{"Executive"}, []string{"x"}, 10)

		assert.Equal(t, []PerceptionGap{{Section: "x", GroupAMean: 50, GroupBMean: 70, Gap: -20}}, got)
	})

	t.Run("sorted by absolute gap", func(t *testing.T) {
		rs := []Scored{
			scored("a", "", "Lead", 0, map[string]int{"p": 90, "q": 20}),
			scored("b", "", "IC", 0, map[string]int{"p": 70, "q": 60}),
		}

		got := PerceptionGaps(rs, []string{"lead"}, []string{"ic"}, []string{"p", "q"}, 10)

		assert.Len(t, got, 2)
		assert.Equal(t, "q", got[0].Section)
		assert.Equal(t, -40, got[0].Gap)
		assert.Equal(t, "p", got[1].Section)
	})

	t.Run("section missing for one set is skipped", func(t *testing.T) {
		got := PerceptionGaps(responses, []string{"Executive"}, []string{"Nobody"}, []string{"x"}, 0)

		assert.Empty(t, got)
	})
}
