package service

import (
	"errors"
	"fmt"

	"github.com/godilite/commhealth/internal/repository"
)

var (
	ErrNotFound          = errors.New("response not found")
	ErrResponseCompleted = errors.New("response already completed")
	ErrNoResponses       = errors.New("no completed responses found")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrStorageFailure    = errors.New("storage failure")
	ErrConcurrentUpdate  = errors.New("response changed while being submitted")
)

func storageError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAlreadyCompleted):
		return ErrResponseCompleted
	case errors.Is(err, repository.ErrConflict):
		return ErrConcurrentUpdate
	default:
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
}
