package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/commhealth/internal/engine"
	"github.com/godilite/commhealth/internal/repository/models"
	"github.com/godilite/commhealth/internal/survey"
)

const listTimeout = 10 * time.Second

// AnalyticsService computes dashboard snapshots over completed responses.
type AnalyticsService struct {
	storage    ResponseRepository
	survey     *survey.Definition
	thresholds engine.Thresholds
	logger     *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(storage ResponseRepository, def *survey.Definition, th engine.Thresholds, logger *zap.Logger) *AnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if def == nil {
		panic("survey definition must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalyticsService{
		storage:    storage,
		survey:     def,
		thresholds: th,
		logger:     logger,
	}
}

// GetAnalytics recomputes the full snapshot for the filters.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, f engine.Filters) (engine.Snapshot, error) {
	snap, err := s.snapshot(ctx, f)
	if err != nil {
		return engine.Snapshot{}, err
	}
	if snap.ResponseCount == 0 {
		return engine.Snapshot{}, ErrNoResponses
	}

	s.logger.Info("computed analytics",
		zap.Int("responses", snap.ResponseCount),
		zap.Stringer("overall", snap.OverallAverage),
		zap.Int("department_gaps", len(snap.DepartmentGaps)),
		zap.Int("alerts", len(snap.Alerts)))
	return snap, nil
}

// GetReportSummary renders the snapshot for the filters as plain text.
func (s *AnalyticsService) GetReportSummary(ctx context.Context, f engine.Filters) (string, error) {
	snap, err := s.GetAnalytics(ctx, f)
	if err != nil {
		return "", fmt.Errorf("report summary: %w", err)
	}
	return engine.FormatSummary(snap, s.survey.Sections), nil
}

// GetPeriodComparison compares the overall average of [From, To] with the
// window of the same length immediately before it.
func (s *AnalyticsService) GetPeriodComparison(ctx context.Context, f engine.Filters) (PeriodComparison, error) {
	if f.From.IsZero() || f.To.IsZero() || f.To.Before(f.From) {
		return PeriodComparison{}, fmt.Errorf("%w: from and to are required and ordered", ErrInvalidPeriod)
	}

	prev := f
	prev.From, prev.To = previousWindow(f.From, f.To)

	var current, previous engine.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.snapshot(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.snapshot(gctx, prev)
		return err
	})
	if err := g.Wait(); err != nil {
		return PeriodComparison{}, err
	}
	if current.ResponseCount == 0 {
		return PeriodComparison{}, ErrNoResponses
	}

	out := PeriodComparison{
		Current:       current.OverallAverage,
		Previous:      previous.OverallAverage,
		CurrentCount:  current.ResponseCount,
		PreviousCount: previous.ResponseCount,
	}
	if out.Current.Valid && out.Previous.Valid {
		out.Change = engine.Some(out.Current.Value - out.Previous.Value)
	}
	return out, nil
}

// previousWindow returns the window of equal length ending right before start.
// Both windows are inclusive, so an inclusive day range maps onto the
// preceding whole days.
func previousWindow(start, end time.Time) (time.Time, time.Time) {
	duration := end.Sub(start)
	prevEnd := start.Add(-time.Nanosecond)
	prevStart := prevEnd.Add(-duration)
	return prevStart, prevEnd
}

func (s *AnalyticsService) snapshot(ctx context.Context, f engine.Filters) (engine.Snapshot, error) {
	dbCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	rows, err := s.storage.ListCompleted(dbCtx, s.survey.ID, f.From, f.To)
	if err != nil {
		return engine.Snapshot{}, storageError(err)
	}

	records := make([]engine.Record, 0, len(rows))
	var unreadable []engine.Rejection
	for _, r := range rows {
		rec, err := toRecord(r)
		if err != nil {
			unreadable = append(unreadable, engine.Rejection{ResponseID: r.ID, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	snap := engine.ComputeAnalytics(records, s.survey.SectionKeys(), f, s.thresholds)
	snap.Rejected = append(snap.Rejected, unreadable...)
	if len(snap.Rejected) > 0 {
		ids := make([]string, len(snap.Rejected))
		for i, r := range snap.Rejected {
			ids[i] = r.ResponseID
		}
		s.logger.Warn("skipped malformed responses",
			zap.Int("count", len(snap.Rejected)),
			zap.Strings("response_ids", ids))
	}
	return snap, nil
}

func toRecord(r models.Response) (engine.Record, error) {
	rec := engine.Record{
		ID:           r.ID,
		Department:   r.Department,
		Role:         r.Role,
		Company:      r.Company,
		CompanySize:  r.CompanySize,
		OverallScore: r.OverallScore,
		CompletedAt:  r.CompletedAt,
	}
	if len(r.SectionScores) > 0 {
		if err := json.Unmarshal(r.SectionScores, &rec.SectionScores); err != nil {
			return engine.Record{}, fmt.Errorf("%w: section scores: %v", engine.ErrInvalidScoreShape, err)
		}
	}
	return rec, nil
}
