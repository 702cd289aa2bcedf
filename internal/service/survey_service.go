package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/godilite/commhealth/internal/engine"
	"github.com/godilite/commhealth/internal/repository/models"
	"github.com/godilite/commhealth/internal/survey"
)

const (
	dbTimeout = 2 * time.Second

	// A submit that races a save is rescored from the new answers.
	submitAttempts     = 3
	submitRetryBackoff = 10 * time.Millisecond
)

// SurveyService drives a single response from start to submission.
type SurveyService struct {
	storage ResponseRepository
	survey  *survey.Definition
	logger  *zap.Logger
	now     func() time.Time
}

// NewSurveyService creates a new SurveyService instance.
func NewSurveyService(storage ResponseRepository, def *survey.Definition, logger *zap.Logger) *SurveyService {
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
	return &SurveyService{
		storage: storage,
		survey:  def,
		logger:  logger,
		now:     time.Now,
	}
}

// StartResponse opens a new incomplete response and returns its id.
func (s *SurveyService) StartResponse(ctx context.Context, d Demographics) (string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	id := uuid.NewString()
	err := s.storage.CreateResponse(dbCtx, models.Response{
		ID:          id,
		SurveyID:    s.survey.ID,
		Department:  d.Department,
		Role:        d.Role,
		Company:     d.Company,
		CompanySize: d.CompanySize,
		Answers:     []byte("{}"),
		StartedAt:   s.now().UTC(),
	})
	if err != nil {
		return "", storageError(err)
	}

	s.logger.Info("response started",
		zap.String("response_id", id),
		zap.String("survey_id", s.survey.ID),
		zap.String("department", d.Department))
	return id, nil
}

// SaveAnswers merges answers into an incomplete response. Later answers to the
// same question replace earlier ones.
func (s *SurveyService) SaveAnswers(ctx context.Context, id string, answers engine.Answers) error {
	if err := s.survey.CheckAnswers(answers); err != nil {
		return err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	resp, stored, err := s.load(dbCtx, id)
	if err != nil {
		return err
	}
	if resp.CompletedAt != nil {
		return ErrResponseCompleted
	}

	maps.Copy(stored, answers)
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	if err := s.storage.UpdateAnswers(dbCtx, id, data); err != nil {
		return storageError(err)
	}

	s.logger.Debug("answers saved", zap.String("response_id", id), zap.Int("count", len(answers)))
	return nil
}

// SubmitResponse scores the stored answers and completes the response. A
// response without any answered scale question stays incomplete. The
// completion only lands if the answers are unchanged since they were scored.
func (s *SurveyService) SubmitResponse(ctx context.Context, id string) (engine.Result, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(submitRetryBackoff), submitAttempts-1),
		dbCtx,
	)
	result, err := backoff.RetryWithData(func() (engine.Result, error) {
		result, err := s.submitOnce(dbCtx, id)
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, ErrConcurrentUpdate):
			s.logger.Debug("answers changed while submitting, rescoring", zap.String("response_id", id))
			return result, err
		default:
			return result, backoff.Permanent(err)
		}
	}, policy)
	if err != nil {
		return engine.Result{}, err
	}

	s.logger.Info("response submitted",
		zap.String("response_id", id),
		zap.Int("overall_score", result.OverallScore),
		zap.Int("sections", len(result.SectionScores)))
	return result, nil
}

func (s *SurveyService) submitOnce(ctx context.Context, id string) (engine.Result, error) {
	resp, answers, err := s.load(ctx, id)
	if err != nil {
		return engine.Result{}, err
	}
	if resp.CompletedAt != nil {
		return engine.Result{}, ErrResponseCompleted
	}

	result, err := engine.ScoreResponse(answers, s.survey.Sections)
	if err != nil {
		s.logger.Info("response not scoreable", zap.String("response_id", id), zap.Error(err))
		return engine.Result{}, err
	}

	sections, err := json.Marshal(result.SectionScores)
	if err != nil {
		return engine.Result{}, fmt.Errorf("encode section scores: %w", err)
	}
	err = s.storage.CompleteResponse(ctx, id, models.Completion{
		Answers:       resp.Answers,
		SectionScores: sections,
		OverallScore:  float64(result.OverallScore),
		CompletedAt:   s.now().UTC(),
	})
	if err != nil {
		return engine.Result{}, storageError(err)
	}
	return result, nil
}

// GetResponse returns a response with its answers and, once completed, its scores.
func (s *SurveyService) GetResponse(ctx context.Context, id string) (ResponseView, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	resp, answers, err := s.load(dbCtx, id)
	if err != nil {
		return ResponseView{}, err
	}

	view := ResponseView{
		ID:       resp.ID,
		SurveyID: resp.SurveyID,
		Demographics: Demographics{
			Department:  resp.Department,
			Role:        resp.Role,
			Company:     resp.Company,
			CompanySize: resp.CompanySize,
		},
		Answers:     answers,
		StartedAt:   resp.StartedAt,
		CompletedAt: resp.CompletedAt,
	}
	if resp.CompletedAt != nil && len(resp.SectionScores) > 0 {
		result := engine.Result{}
		if err := json.Unmarshal(resp.SectionScores, &result.SectionScores); err != nil {
			return ResponseView{}, fmt.Errorf("decode section scores: %w", err)
		}
		if resp.OverallScore != nil {
			result.OverallScore = int(*resp.OverallScore)
		}
		view.Result = &result
	}
	return view, nil
}

func (s *SurveyService) load(ctx context.Context, id string) (models.Response, engine.Answers, error) {
	resp, err := s.storage.GetResponse(ctx, id)
	if err != nil {
		return models.Response{}, nil, storageError(err)
	}

	answers := engine.Answers{}
	if len(resp.Answers) > 0 {
		if err := json.Unmarshal(resp.Answers, &answers); err != nil {
			return models.Response{}, nil, fmt.Errorf("decode stored answers: %w", err)
		}
	}
	return resp, answers, nil
}
