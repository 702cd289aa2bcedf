package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/commhealth/internal/repository/models"
)

// MockResponseRepository is a mock implementation of the ResponseRepository interface
// for testing the service layer.
type MockResponseRepository struct {
	CreateResponseFunc   func(ctx context.Context, r models.Response) error
	GetResponseFunc      func(ctx context.Context, id string) (models.Response, error)
	UpdateAnswersFunc    func(ctx context.Context, id string, answers []byte) error
	CompleteResponseFunc func(ctx context.Context, id string, c models.Completion) error
	ListCompletedFunc    func(ctx context.Context, surveyID string, from, to time.Time) ([]models.Response, error)
}

// CreateResponse implements the ResponseRepository interface
func (m *MockResponseRepository) CreateResponse(ctx context.Context, r models.Response) error {
	if m.CreateResponseFunc != nil {
		return m.CreateResponseFunc(ctx, r)
	}
	return errors.New("CreateResponseFunc not implemented")
}

// GetResponse implements the ResponseRepository interface
func (m *MockResponseRepository) GetResponse(ctx context.Context, id string) (models.Response, error) {
	if m.GetResponseFunc != nil {
		return m.GetResponseFunc(ctx, id)
	}
	return models.Response{}, errors.New("GetResponseFunc not implemented")
}

// UpdateAnswers implements the ResponseRepository interface
func (m *MockResponseRepository) UpdateAnswers(ctx context.Context, id string, answers []byte) error {
	if m.UpdateAnswersFunc != nil {
		return m.UpdateAnswersFunc(ctx, id, answers)
	}
	return errors.New("UpdateAnswersFunc not implemented")
}

// CompleteResponse implements the ResponseRepository interface
func (m *MockResponseRepository) CompleteResponse(ctx context.Context, id string, c models.Completion) error {
	if m.CompleteResponseFunc != nil {
		return m.CompleteResponseFunc(ctx, id, c)
	}
	return errors.New("CompleteResponseFunc not implemented")
}

// ListCompleted implements the ResponseRepository interface
func (m *MockResponseRepository) ListCompleted(ctx context.Context, surveyID string, from, to time.Time) ([]models.Response, error) {
	if m.ListCompletedFunc != nil {
		return m.ListCompletedFunc(ctx, surveyID, from, to)
	}
	return nil, errors.New("ListCompletedFunc not implemented")
}
