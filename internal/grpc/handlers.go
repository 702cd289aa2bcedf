package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/godilite/commhealth/internal/engine"
	"github.com/godilite/commhealth/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	dateLayout           = "2006-01-02"
)

type CacheKeyType string

const (
	cacheKeyPrefix           CacheKeyType = "grpc:analytics"
	cacheKeyAnalytics        CacheKeyType = cacheKeyPrefix + ":snapshot"
	cacheKeyReportSummary    CacheKeyType = cacheKeyPrefix + ":summary"
	cacheKeyPeriodComparison CacheKeyType = cacheKeyPrefix + ":period_comparison"
)

type GRPCHandlers struct {
	surveys   SurveyService
	analytics AnalyticsService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration

	generation atomic.Uint64
}

var _ CommHealthServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil.
func NewGRPCHandlers(surveys SurveyService, analytics AnalyticsService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if surveys == nil {
		panic("nil SurveyService provided to NewGRPCHandlers")
	}
	if analytics == nil {
		panic("nil AnalyticsService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		surveys:   surveys,
		analytics: analytics,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

func (s *GRPCHandlers) results() readThrough {
	return readThrough{
		cache:      s.cache,
		sf:         &s.sfGroup,
		ttl:        s.cacheTTL,
		logger:     s.logger,
		generation: &s.generation,
	}
}

func (s *GRPCHandlers) parseAndValidate(req *AnalyticsRequest) (engine.Filters, error) {
	f := engine.Filters{
		Company:    strings.TrimSpace(req.Company),
		Department: strings.TrimSpace(req.Department),
	}

	if req.StartDate != "" {
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return f, status.Errorf(codes.InvalidArgument, "start_date must be YYYY-MM-DD: %v", err)
		}
		f.From = start
	}
	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return f, status.Errorf(codes.InvalidArgument, "end_date must be YYYY-MM-DD: %v", err)
		}
		f.To = end.Add(24*time.Hour - time.Nanosecond)
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, status.Error(codes.InvalidArgument, "end date must be after start date")
	}
	return f, nil
}

func normalizeKey(prefix CacheKeyType, f engine.Filters) string {
	day := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.UTC().Format(dateLayout)
	}
	field := func(v string) string {
		if v == "" {
			return "*"
		}
		return strings.ToLower(v)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", prefix, field(f.Company), field(f.Department), day(f.From), day(f.To))
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, "response not found")
	case errors.Is(err, service.ErrNoResponses):
		s.logger.Info("no responses found", zap.String("op", op))
		return status.Error(codes.NotFound, "no completed responses match the filters")
	case errors.Is(err, engine.ErrInvalidAnswer):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrInvalidPeriod):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrResponseCompleted):
		return status.Error(codes.FailedPrecondition, "response already completed")
	case errors.Is(err, service.ErrConcurrentUpdate):
		return status.Error(codes.Aborted, "answers changed during submission, retry")
	case errors.Is(err, engine.ErrInsufficientAnswers):
		return status.Error(codes.FailedPrecondition, "at least one scale question must be answered")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return status.Error(codes.InvalidArgument, "response_id is required")
	}
	return nil
}

func (s *GRPCHandlers) StartResponse(ctx context.Context, req *StartResponseRequest) (*StartResponseResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	id, err := s.surveys.StartResponse(ctx, service.Demographics{
		Department:  strings.TrimSpace(req.Department),
		Role:        strings.TrimSpace(req.Role),
		Company:     strings.TrimSpace(req.Company),
		CompanySize: strings.TrimSpace(req.CompanySize),
	})
	if err != nil {
		return nil, s.handleError(ctx, "StartResponse", err)
	}
	return &StartResponseResponse{ResponseID: id}, nil
}

func (s *GRPCHandlers) SaveAnswers(ctx context.Context, req *SaveAnswersRequest) (*SaveAnswersResponse, error) {
	if err := requireID(req.ResponseID); err != nil {
		return nil, err
	}
	if len(req.Answers) == 0 {
		return nil, status.Error(codes.InvalidArgument, "answers are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.surveys.SaveAnswers(ctx, req.ResponseID, req.Answers); err != nil {
		return nil, s.handleError(ctx, "SaveAnswers", err)
	}
	return &SaveAnswersResponse{Saved: len(req.Answers)}, nil
}

func (s *GRPCHandlers) SubmitResponse(ctx context.Context, req *ResponseRequest) (*SubmitResponseResponse, error) {
	if err := requireID(req.ResponseID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.surveys.SubmitResponse(ctx, req.ResponseID)
	if err != nil {
		return nil, s.handleError(ctx, "SubmitResponse", err)
	}

	s.invalidateAnalytics()
	return &SubmitResponseResponse{
		SectionScores: result.SectionScores,
		OverallScore:  result.OverallScore,
	}, nil
}

func (s *GRPCHandlers) GetResponse(ctx context.Context, req *ResponseRequest) (*GetResponseResponse, error) {
	if err := requireID(req.ResponseID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	view, err := s.surveys.GetResponse(ctx, req.ResponseID)
	if err != nil {
		return nil, s.handleError(ctx, "GetResponse", err)
	}
	return &GetResponseResponse{Response: view}, nil
}

func (s *GRPCHandlers) GetAnalytics(ctx context.Context, req *AnalyticsRequest) (*GetAnalyticsResponse, error) {
	f, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyAnalytics, f)

	snap, err := FindAndCache(ctx, s.results(), cacheKey, func(fetchCtx context.Context) (engine.Snapshot, error) {
		return s.analytics.GetAnalytics(fetchCtx, f)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetAnalytics", err)
	}
	return &GetAnalyticsResponse{Snapshot: snap}, nil
}

func (s *GRPCHandlers) GetReportSummary(ctx context.Context, req *AnalyticsRequest) (*ReportSummaryResponse, error) {
	f, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyReportSummary, f)

	summary, err := FindAndCache(ctx, s.results(), cacheKey, func(fetchCtx context.Context) (string, error) {
		return s.analytics.GetReportSummary(fetchCtx, f)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetReportSummary", err)
	}
	return &ReportSummaryResponse{Summary: summary}, nil
}

func (s *GRPCHandlers) GetPeriodComparison(ctx context.Context, req *AnalyticsRequest) (*PeriodComparisonResponse, error) {
	f, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}
	if f.From.IsZero() || f.To.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "start and end dates are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyPeriodComparison, f)

	cmp, err := FindAndCache(ctx, s.results(), cacheKey, func(fetchCtx context.Context) (service.PeriodComparison, error) {
		return s.analytics.GetPeriodComparison(fetchCtx, f)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetPeriodComparison", err)
	}
	return &PeriodComparisonResponse{Comparison: cmp}, nil
}

// invalidateAnalytics drops cached analytics after a new completion so the
// next read recomputes.
func (s *GRPCHandlers) invalidateAnalytics() {
	s.results().invalidate(string(cacheKeyPrefix) + ":")
}
