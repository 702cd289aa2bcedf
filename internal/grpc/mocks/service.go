package mocks

import (
	"context"
	"errors"

	"github.com/godilite/commhealth/internal/engine"
	"github.com/godilite/commhealth/internal/service"
)

// MockSurveyService is a mock implementation of the SurveyService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockSurveyService struct {
	StartResponseFunc  func(ctx context.Context, d service.Demographics) (string, error)
	SaveAnswersFunc    func(ctx context.Context, id string, answers engine.Answers) error
	SubmitResponseFunc func(ctx context.Context, id string) (engine.Result, error)
	GetResponseFunc    func(ctx context.Context, id string) (service.ResponseView, error)
}

// StartResponse implements the SurveyService interface
func (m *MockSurveyService) StartResponse(ctx context.Context, d service.Demographics) (string, error) {
	if m.StartResponseFunc != nil {
		return m.StartResponseFunc(ctx, d)
	}
	return "", errors.New("StartResponseFunc not implemented")
}

// SaveAnswers implements the SurveyService interface
func (m *MockSurveyService) SaveAnswers(ctx context.Context, id string, answers engine.Answers) error {
	if m.SaveAnswersFunc != nil {
		return m.SaveAnswersFunc(ctx, id, answers)
	}
	return errors.New("SaveAnswersFunc not implemented")
}

// SubmitResponse implements the SurveyService interface
func (m *MockSurveyService) SubmitResponse(ctx context.Context, id string) (engine.Result, error) {
	if m.SubmitResponseFunc != nil {
		return m.SubmitResponseFunc(ctx, id)
	}
	return engine.Result{}, errors.New("SubmitResponseFunc not implemented")
}

// GetResponse implements the SurveyService interface
func (m *MockSurveyService) GetResponse(ctx context.Context, id string) (service.ResponseView, error) {
	if m.GetResponseFunc != nil {
		return m.GetResponseFunc(ctx, id)
	}
	return service.ResponseView{}, errors.New("GetResponseFunc not implemented")
}

// MockAnalyticsService is a mock implementation of the AnalyticsService interface.
type MockAnalyticsService struct {
	GetAnalyticsFunc        func(ctx context.Context, f engine.Filters) (engine.Snapshot, error)
	GetReportSummaryFunc    func(ctx context.Context, f engine.Filters) (string, error)
	GetPeriodComparisonFunc func(ctx context.Context, f engine.Filters) (service.PeriodComparison, error)
}

// GetAnalytics implements the AnalyticsService interface
func (m *MockAnalyticsService) GetAnalytics(ctx context.Context, f engine.Filters) (engine.Snapshot, error) {
	if m.GetAnalyticsFunc != nil {
		return m.GetAnalyticsFunc(ctx, f)
	}
	return engine.Snapshot{}, errors.New("GetAnalyticsFunc not implemented")
}

// GetReportSummary implements the AnalyticsService interface
func (m *MockAnalyticsService) GetReportSummary(ctx context.Context, f engine.Filters) (string, error) {
	if m.GetReportSummaryFunc != nil {
		return m.GetReportSummaryFunc(ctx, f)
	}
	return "", errors.New("GetReportSummaryFunc not implemented")
}

// GetPeriodComparison implements the AnalyticsService interface
func (m *MockAnalyticsService) GetPeriodComparison(ctx context.Context, f engine.Filters) (service.PeriodComparison, error) {
	if m.GetPeriodComparisonFunc != nil {
		return m.GetPeriodComparisonFunc(ctx, f)
	}
	return service.PeriodComparison{}, errors.New("GetPeriodComparisonFunc not implemented")
}
