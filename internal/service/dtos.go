package service

import (
	"time"

	"github.com/godilite/commhealth/internal/engine"
)

type Demographics struct {
	Department  string `json:"department,omitempty"`
	Role        string `json:"role,omitempty"`
	Company     string `json:"company,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
}

type ResponseView struct {
	ID           string         `json:"id"`
	SurveyID     string         `json:"survey_id"`
	Demographics Demographics   `json:"demographics"`
	Answers      engine.Answers `json:"answers"`
	Result       *engine.Result `json:"result,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// PeriodComparison holds the overall average of a window and the window of
// equal length right before it. Change is in percentage points.
type PeriodComparison struct {
	Current       engine.Percent `json:"current"`
	Previous      engine.Percent `json:"previous"`
	Change        engine.Percent `json:"change"`
	CurrentCount  int            `json:"current_count"`
	PreviousCount int            `json:"previous_count"`
}
