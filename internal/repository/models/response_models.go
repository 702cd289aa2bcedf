package models

import (
	"encoding/json"
	"time"
)

// Response is one row of the responses table.
type Response struct {
	ID            string
	SurveyID      string
	Department    string
	Role          string
	Company       string
	CompanySize   string
	Answers       json.RawMessage
	SectionScores json.RawMessage
	OverallScore  *float64
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// Completion is the canonical scoring output written when a response is submitted.
// Answers is the stored answers text the scores were computed from.
type Completion struct {
	Answers       json.RawMessage
	SectionScores json.RawMessage
	OverallScore  float64
	CompletedAt   time.Time
}
