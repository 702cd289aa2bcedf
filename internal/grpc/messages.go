package grpc

import (
	"github.com/godilite/commhealth/internal/engine"
	"github.com/godilite/commhealth/internal/service"
)

type StartResponseRequest struct {
	Department  string `json:"department,omitempty"`
	Role        string `json:"role,omitempty"`
	Company     string `json:"company,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
}

type StartResponseResponse struct {
	ResponseID string `json:"response_id"`
}

type SaveAnswersRequest struct {
	ResponseID string         `json:"response_id"`
	Answers    engine.Answers `json:"answers"`
}

type SaveAnswersResponse struct {
	Saved int `json:"saved"`
}

type ResponseRequest struct {
	ResponseID string `json:"response_id"`
}

type SubmitResponseResponse struct {
	SectionScores map[string]engine.SectionScore `json:"section_scores"`
	OverallScore  int                            `json:"overall_score"`
}

type GetResponseResponse struct {
	Response service.ResponseView `json:"response"`
}

// AnalyticsRequest selects the responses an analytics call covers. Dates are
// calendar days (YYYY-MM-DD, UTC); the end day is inclusive.
type AnalyticsRequest struct {
	Company    string `json:"company,omitempty"`
	Department string `json:"department,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

type GetAnalyticsResponse struct {
	Snapshot engine.Snapshot `json:"snapshot"`
}

type ReportSummaryResponse struct {
	Summary string `json:"summary"`
}

type PeriodComparisonResponse struct {
	Comparison service.PeriodComparison `json:"comparison"`
}
