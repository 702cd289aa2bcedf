package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// UnknownGroup is the bucket for responses with a missing demographic value.
const UnknownGroup = "Unknown"

type QuestionType string

const (
	QuestionScale QuestionType = "scale"
	QuestionOpen  QuestionType = "open"
)

type Option struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

type Question struct {
	ID      string       `json:"id" yaml:"id"`
	Text    string       `json:"text" yaml:"text"`
	Type    QuestionType `json:"type" yaml:"type"`
	Weight  float64      `json:"weight" yaml:"weight"`
	Options []Option     `json:"options,omitempty" yaml:"options,omitempty"`
}

// EffectiveWeight treats an unset weight as 1.
func (q Question) EffectiveWeight() float64 {
	if q.Weight <= 0 {
		return 1
	}
	return q.Weight
}

type Section struct {
	Key       string     `json:"key" yaml:"key"`
	Name      string     `json:"name" yaml:"name"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// SectionKeys returns the keys of sections in their configured order.
func SectionKeys(sections []Section) []string {
	keys := make([]string, len(sections))
	for i, s := range sections {
		keys[i] = s.Key
	}
	return keys
}

// Answer is either a scale value or free text.
type Answer struct {
	Scale int
	Text  string
}

func (a Answer) IsScale() bool { return a.Scale != 0 }

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsScale() {
		return json.Marshal(a.Scale)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*a = Answer{}
		return json.Unmarshal(data, &a.Text)
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	if v != float64(int(v)) {
		return fmt.Errorf("%w: non-integer scale value %v", ErrInvalidAnswer, v)
	}
	*a = Answer{Scale: int(v)}
	return nil
}

// Answers maps question id to answer.
type Answers map[string]Answer

type SectionScore struct {
	Score      float64 `json:"score"`
	Max        float64 `json:"max"`
	Percentage int     `json:"percentage"`
}

// Result is the canonical scoring output persisted at submission time.
type Result struct {
	SectionScores map[string]SectionScore `json:"section_scores"`
	OverallScore  int                     `json:"overall_score"`
}

// Record is a stored response as handed over by the storage layer. Scores keep
// their raw stored shape; ingestion normalizes them.
type Record struct {
	ID            string                     `json:"id"`
	Department    string                     `json:"respondent_department,omitempty"`
	Role          string                     `json:"respondent_role,omitempty"`
	Company       string                     `json:"respondent_company,omitempty"`
	CompanySize   string                     `json:"company_size,omitempty"`
	SectionScores map[string]json.RawMessage `json:"section_scores,omitempty"`
	OverallScore  *float64                   `json:"overall_score,omitempty"`
	CompletedAt   *time.Time                 `json:"completed_at,omitempty"`
}

// Scored is a completed response with every score resolved to a percentage.
// Sections without data are absent from the map; Overall is meaningful only
// when HasOverall is set.
type Scored struct {
	ID          string
	Department  string
	Role        string
	Company     string
	CompanySize string
	Sections    map[string]Points
	Overall     Points
	HasOverall  bool
	CompletedAt time.Time
}

// CategoryFunc maps a response to a group label. It must always return a label.
type CategoryFunc func(Scored) string

func labelOrUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return UnknownGroup
	}
	return v
}

func ByDepartment(r Scored) string  { return labelOrUnknown(r.Department) }
func ByRole(r Scored) string        { return labelOrUnknown(r.Role) }
func ByCompany(r Scored) string     { return labelOrUnknown(r.Company) }
func ByCompanySize(r Scored) string { return labelOrUnknown(r.CompanySize) }
