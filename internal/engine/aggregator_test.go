package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scored(id, dept, role string, overall int, sections map[string]int) Scored {
	return Scored{ID: id, Department: dept, Role: role, Overall: PointsOf(float64(overall)), HasOverall: true, Sections: points(sections)}
}

func points(pcts map[string]int) map[string]Points {
	if pcts == nil {
		return nil
	}
	out := make(map[string]Points, len(pcts))
	for k, v := range pcts {
		out[k] = PointsOf(float64(v))
	}
	return out
}

func TestAggregateByCategory(t *testing.T) {
	responses := []Scored{
		scored("r1", "Sales", "Staff", 80, map[string]int{"speaking_up": 80, "clarity": 70}),
		scored("r2", "Sales", "Staff", 40, map[string]int{"speaking_up": 40}),
		scored("r3", "", "Manager", 55, map[string]int{"clarity": 55}),
		scored("r4", "  ", "Manager", 65, map[string]int{"clarity": 66}),
	}

	t.Run("means per group and section", func(t *testing.T) {
		table := AggregateByCategory(responses, ByDepartment, nil)

		assert.Equal(t, Table{
			"Sales":   {"speaking_up": 60, "clarity": 70},
			"Unknown": {"clarity": 61},
		}, table)
	})

	t.Run("missing data is absent not zero", func(t *testing.T) {
		table := AggregateByCategory(responses, ByDepartment, nil)

		_, ok := table.Cell("Unknown", "speaking_up")
		assert.False(t, ok)
	})

	t.Run("section key filter", func(t *testing.T) {
		table := AggregateByCategory(responses, ByDepartment, []string{"speaking_up"})

		assert.Equal(t, Table{"Sales": {"speaking_up": 60}}, table)
	})

	t.Run("order independent", func(t *testing.T) {
		want := AggregateByCategory(responses, ByRole, nil)
		rng := rand.New(rand.NewSource(7))
		shuffled := append([]Scored(nil), responses...)
		for i := 0; i < 20; i++ {
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			assert.Equal(t, want, AggregateByCategory(shuffled, ByRole, nil))
		}
	})
}

func TestAggregateByTwoCategories(t *testing.T) {
	responses := []Scored{
		scored("r1", "Sales", "Staff", 80, nil),
		scored("r2", "Sales", "Staff", 40, nil),
		scored("r3", "Sales", "Manager", 90, nil),
		scored("r4", "Ops", "", 50, nil),
		{ID: "r5", Department: "Ops", Role: "Staff"},
	}

	table := AggregateByTwoCategories(responses, ByDepartment, ByRole)

	assert.Equal(t, Table{
		"Sales": {"Staff": 60, "Manager": 90},
		"Ops":   {"Unknown": 50},
	}, table)
}

func TestSectionAndOverallAverages(t *testing.T) {
	responses := []Scored{
		scored("r1", "A", "", 80, map[string]int{"x": 80, "y": 20}),
		scored("r2", "B", "", 41, map[string]int{"x": 41}),
	}

	assert.Equal(t, map[string]int{"x": 61, "y": 20}, SectionAverages(responses, nil))
	assert.Equal(t, Some(61), OverallAverage(responses))
	assert.False(t, OverallAverage(nil).Valid)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, GroupCounts(responses, ByDepartment))
}

func TestAverages_RoundOnlyTheMean(t *testing.T) {
	responses := []Scored{
		{ID: "r1", Department: "Sales", Sections: map[string]Points{"x": PointsOf(62.6)}, Overall: PointsOf(62.6), HasOverall: true},
		{ID: "r2", Department: "Sales", Sections: map[string]Points{"x": PointsOf(61.6)}, Overall: PointsOf(61.6), HasOverall: true},
	}

	assert.Equal(t, map[string]int{"x": 62}, SectionAverages(responses, nil))
	assert.Equal(t, Table{"Sales": {"x": 62}}, AggregateByCategory(responses, ByDepartment, nil))
	assert.Equal(t, Some(62), OverallAverage(responses))
}
