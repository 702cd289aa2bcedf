package grpc

import (
	"context"
	"time"

	"github.com/godilite/commhealth/internal/engine"
	"github.com/godilite/commhealth/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type SurveyService interface {
	StartResponse(ctx context.Context, d service.Demographics) (string, error)
	SaveAnswers(ctx context.Context, id string, answers engine.Answers) error
	SubmitResponse(ctx context.Context, id string) (engine.Result, error)
	GetResponse(ctx context.Context, id string) (service.ResponseView, error)
}

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, f engine.Filters) (engine.Snapshot, error)
	GetReportSummary(ctx context.Context, f engine.Filters) (string, error)
	GetPeriodComparison(ctx context.Context, f engine.Filters) (service.PeriodComparison, error)
}
