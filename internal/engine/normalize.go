package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ScaleMax is the highest Likert value a scale question accepts.
const ScaleMax = 4

// ScoreKind tags which representation a Score holds.
type ScoreKind uint8

const (
	// KindAbsent is the zero value: no score was recorded.
	KindAbsent ScoreKind = iota
	// KindRawScale is a bare 1-4 Likert value (historic rows).
	KindRawScale
	// KindPercentage is an already canonical 0-100 percentage.
	KindPercentage
)

// Score is a stored score in one of its historical shapes.
type Score struct {
	Kind  ScoreKind
	Value float64
}

// RawScale wraps a bare 1-4 value.
func RawScale(v float64) Score { return Score{Kind: KindRawScale, Value: v} }

// Percentage wraps a canonical percentage.
func Percentage(p float64) Score { return Score{Kind: KindPercentage, Value: p} }

// Percent is an optional integer percentage. The zero value means "no data".
type Percent struct {
	Value int
	Valid bool
}

// Some returns a defined Percent.
func Some(v int) Percent { return Percent{Value: v, Valid: true} }

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Percent{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Some(v)
	return nil
}

func (p Percent) String() string {
	if !p.Valid {
		return "-"
	}
	return fmt.Sprintf("%d%%", p.Value)
}

// Points is a percentage in millionths of a point. Aggregates sum Points, so a
// fractional stored percentage is rounded once, when the mean is taken.
type Points int64

const pointsPerPercent = 1_000_000

// PointsOf converts a percentage to Points.
func PointsOf(pct float64) Points {
	return Points(math.Round(pct * pointsPerPercent))
}

// Percent rounds to a whole percentage, halves away from zero.
func (p Points) Percent() int {
	return int(math.Round(float64(p) / pointsPerPercent))
}

// Normalize converts any score representation to the canonical percentage scale.
// Absent scores stay absent.
func Normalize(s Score) (Percent, error) {
	p, ok, err := NormalizePoints(s)
	if err != nil || !ok {
		return Percent{}, err
	}
	return Some(p.Percent()), nil
}

// NormalizePoints is Normalize without the final rounding. ok is false for an
// absent score.
func NormalizePoints(s Score) (Points, bool, error) {
	switch s.Kind {
	case KindAbsent:
		return 0, false, nil
	case KindPercentage:
		if math.IsNaN(s.Value) || s.Value < 0 || s.Value > 100 {
			return 0, false, fmt.Errorf("%w: percentage %v out of range", ErrInvalidScoreShape, s.Value)
		}
		return PointsOf(s.Value), true, nil
	case KindRawScale:
		if math.IsNaN(s.Value) || s.Value < 1 || s.Value > ScaleMax {
			return 0, false, fmt.Errorf("%w: scale value %v outside 1-%d", ErrInvalidScoreShape, s.Value, ScaleMax)
		}
		return PointsOf(s.Value / ScaleMax * 100), true, nil
	default:
		return 0, false, fmt.Errorf("%w: unknown kind %d", ErrInvalidScoreShape, s.Kind)
	}
}

// ParseSectionScore decodes a stored section score: null, a bare 1-4 number,
// or an object carrying a numeric "percentage". A null percentage is absent.
func ParseSectionScore(raw json.RawMessage) (Score, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Score{}, nil
	}

	switch raw[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Score{}, fmt.Errorf("%w: %v", ErrInvalidScoreShape, err)
		}
		pct, ok := obj["percentage"]
		if !ok {
			return Score{}, fmt.Errorf("%w: object without percentage", ErrInvalidScoreShape)
		}
		var v *float64
		if err := json.Unmarshal(pct, &v); err != nil {
			return Score{}, fmt.Errorf("%w: non-numeric percentage", ErrInvalidScoreShape)
		}
		if v == nil {
			return Score{}, nil
		}
		return Percentage(*v), nil
	case '"', '[', 't', 'f':
		return Score{}, fmt.Errorf("%w: %s", ErrInvalidScoreShape, truncate(raw))
	default:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return Score{}, fmt.Errorf("%w: %v", ErrInvalidScoreShape, err)
		}
		return RawScale(v), nil
	}
}

// ParseOverallScore classifies a stored overall score. Values up to ScaleMax are
// historic 1-4 averages; the smallest real percentage is 25, so the ranges never overlap.
func ParseOverallScore(v *float64) Score {
	if v == nil {
		return Score{}
	}
	if *v <= ScaleMax {
		return RawScale(*v)
	}
	return Percentage(*v)
}

func truncate(b []byte) string {
	const limit = 32
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
