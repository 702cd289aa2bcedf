package service

import (
	"context"
	"time"

	"github.com/godilite/commhealth/internal/repository/models"
)

// ResponseRepository defines the storage operations the services depend on.
type ResponseRepository interface {
	CreateResponse(ctx context.Context, r models.Response) error
	GetResponse(ctx context.Context, id string) (models.Response, error)
	UpdateAnswers(ctx context.Context, id string, answers []byte) error
	CompleteResponse(ctx context.Context, id string, c models.Completion) error
	ListCompleted(ctx context.Context, surveyID string, from, to time.Time) ([]models.Response, error)
}
