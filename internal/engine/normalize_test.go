package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalize tests conversion of every score shape to a percentage
func TestNormalize(t *testing.T) {
	t.Run("absent stays absent", func(t *testing.T) {
		p, err := Normalize(Score{})
		require.NoError(t, err)
		assert.False(t, p.Valid)
	})

	t.Run("percentage passes through", func(t *testing.T) {
		p, err := Normalize(Percentage(73))
		require.NoError(t, err)
		assert.Equal(t, Some(73), p)
	})

	t.Run("raw scale values", func(t *testing.T) {
		cases := []struct {
			raw  float64
			want int
		}{
			{1, 25},
			{2, 50},
			{2.5, 63},
			{3, 75},
			{3.2, 80},
			{4, 100},
		}
		for _, tc := range cases {
			p, err := Normalize(RawScale(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Value, "raw %v", tc.raw)
		}
	})

	t.Run("out of range values are invalid", func(t *testing.T) {
		_, err := Normalize(RawScale(5))
		assert.ErrorIs(t, err, ErrInvalidScoreShape)

		_, err = Normalize(RawScale(0))
		assert.ErrorIs(t, err, ErrInvalidScoreShape)

		_, err = Normalize(Percentage(120))
		assert.ErrorIs(t, err, ErrInvalidScoreShape)
	})

	t.Run("fractional percentage keeps its precision until rounding", func(t *testing.T) {
		p, ok, err := NormalizePoints(Percentage(62.6))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, Points(62_600_000), p)
		assert.Equal(t, 63, p.Percent())

		_, ok, err = NormalizePoints(Score{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("idempotent through the percentage shape", func(t *testing.T) {
		for _, s := range []Score{RawScale(1), RawScale(2.75), RawScale(4), Percentage(42), Percentage(99.6)} {
			first, err := Normalize(s)
			require.NoError(t, err)
			second, err := Normalize(Percentage(float64(first.Value)))
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	})
}

func TestParseSectionScore(t *testing.T) {
	t.Run("null and empty are absent", func(t *testing.T) {
		for _, raw := range []string{"null", "", "  null "} {
			s, err := ParseSectionScore(json.RawMessage(raw))
			require.NoError(t, err)
			assert.Equal(t, KindAbsent, s.Kind)
		}
	})

	t.Run("bare number is raw scale", func(t *testing.T) {
		s, err := ParseSectionScore(json.RawMessage("3.5"))
		require.NoError(t, err)
		assert.Equal(t, RawScale(3.5), s)
	})

	t.Run("object uses percentage", func(t *testing.T) {
		s, err := ParseSectionScore(json.RawMessage(`{"score":6,"max":8,"percentage":75}`))
		require.NoError(t, err)
		assert.Equal(t, Percentage(75), s)
	})

	t.Run("object with null percentage is absent", func(t *testing.T) {
		for _, raw := range []string{`{"score":0,"max":0,"percentage":null}`, `{"percentage": null}`} {
			s, err := ParseSectionScore(json.RawMessage(raw))
			require.NoError(t, err, raw)
			assert.Equal(t, Score{}, s, raw)
		}
	})

	t.Run("invalid shapes", func(t *testing.T) {
		for _, raw := range []string{`"high"`, `[1,2]`, `true`, `{"score":6,"max":8}`, `{"percentage":"75"}`} {
			_, err := ParseSectionScore(json.RawMessage(raw))
			assert.ErrorIs(t, err, ErrInvalidScoreShape, raw)
		}
	})
}

func TestParseOverallScore(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	assert.Equal(t, Score{}, ParseOverallScore(nil))
	assert.Equal(t, RawScale(3.2), ParseOverallScore(v(3.2)))
	assert.Equal(t, Percentage(80), ParseOverallScore(v(80)))
	assert.Equal(t, Percentage(25), ParseOverallScore(v(25)))
}

func TestPercentJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Percent{"a": Some(40), "b": {}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":40,"b":null}`, string(out))

	var p Percent
	require.NoError(t, json.Unmarshal([]byte("null"), &p))
	assert.False(t, p.Valid)
	require.NoError(t, json.Unmarshal([]byte("55"), &p))
	assert.Equal(t, Some(55), p)
	assert.Equal(t, "55%", p.String())
	assert.Equal(t, "-", Percent{}.String())
}
