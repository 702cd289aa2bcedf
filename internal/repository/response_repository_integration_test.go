package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/commhealth/internal/repository"
	"github.com/godilite/commhealth/internal/repository/models"
)

func setupTestDB(t *testing.T) (*sql.DB, *repository.ResponseRepository) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewResponseRepository(db, "sqlite3")
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.EnsureSchema(context.Background()), "schema creation must be idempotent")
	return db, repo
}

func seedResponse(t *testing.T, repo *repository.ResponseRepository, id, dept string, completedAt *time.Time) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.CreateResponse(ctx, models.Response{
		ID:         id,
		SurveyID:   "comms-2025",
		Department: dept,
		Role:       "Staff",
		Company:    "Acme",
		Answers:    []byte(`{"q1":4}`),
		StartedAt:  time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}))
	if completedAt != nil {
		require.NoError(t, repo.CompleteResponse(ctx, id, models.Completion{
			Answers:       []byte(`{"q1":4}`),
			SectionScores: []byte(`{"speaking_up":{"score":4,"max":4,"percentage":100}}`),
			OverallScore:  100,
			CompletedAt:   *completedAt,
		}))
	}
}

func TestResponseRepository_Integration(t *testing.T) {
	ctx := context.Background()
	_, repo := setupTestDB(t)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := base.Add(24 * time.Hour)
	seedResponse(t, repo, "r1", "Sales", &base)
	seedResponse(t, repo, "r2", "", &day2)
	seedResponse(t, repo, "draft", "Sales", nil)

	t.Run("GetResponse", func(t *testing.T) {
		r, err := repo.GetResponse(ctx, "r2")
		require.NoError(t, err)

		assert.Equal(t, "comms-2025", r.SurveyID)
		assert.Empty(t, r.Department)
		assert.JSONEq(t, `{"q1":4}`, string(r.Answers))
		require.NotNil(t, r.OverallScore)
		assert.Equal(t, 100.0, *r.OverallScore)
		require.NotNil(t, r.CompletedAt)
		assert.True(t, day2.Equal(*r.CompletedAt))

		draft, err := repo.GetResponse(ctx, "draft")
		require.NoError(t, err)
		assert.Nil(t, draft.CompletedAt)
		assert.Nil(t, draft.OverallScore)
		assert.Nil(t, draft.SectionScores)

		_, err = repo.GetResponse(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("ListCompleted", func(t *testing.T) {
		all, err := repo.ListCompleted(ctx, "comms-2025", time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "r1", all[0].ID)
		assert.Equal(t, "r2", all[1].ID)

		first, err := repo.ListCompleted(ctx, "comms-2025", base, base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.Equal(t, "r1", first[0].ID)

		late, err := repo.ListCompleted(ctx, "comms-2025", day2, time.Time{})
		require.NoError(t, err)
		require.Len(t, late, 1)
		assert.Equal(t, "r2", late[0].ID)

		other, err := repo.ListCompleted(ctx, "other-survey", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("UpdateAnswers", func(t *testing.T) {
		require.NoError(t, repo.UpdateAnswers(ctx, "draft", []byte(`{"q1":2,"q2":"fine"}`)))
		r, err := repo.GetResponse(ctx, "draft")
		require.NoError(t, err)
		assert.JSONEq(t, `{"q1":2,"q2":"fine"}`, string(r.Answers))

		assert.ErrorIs(t, repo.UpdateAnswers(ctx, "r1", []byte(`{}`)), repository.ErrAlreadyCompleted)
		assert.ErrorIs(t, repo.UpdateAnswers(ctx, "missing", []byte(`{}`)), repository.ErrNotFound)
	})

	t.Run("CompleteResponse only once", func(t *testing.T) {
		err := repo.CompleteResponse(ctx, "r1", models.Completion{
			Answers:       []byte(`{"q1":4}`),
			SectionScores: []byte(`{}`),
			OverallScore:  10,
			CompletedAt:   day2,
		})
		assert.ErrorIs(t, err, repository.ErrAlreadyCompleted)

		r, err := repo.GetResponse(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, 100.0, *r.OverallScore)
	})

	t.Run("CompleteResponse rejects answers changed after scoring", func(t *testing.T) {
		seedResponse(t, repo, "racy", "Sales", nil)
		require.NoError(t, repo.UpdateAnswers(ctx, "racy", []byte(`{"q1":1}`)))

		err := repo.CompleteResponse(ctx, "racy", models.Completion{
			Answers:       []byte(`{"q1":4}`),
			SectionScores: []byte(`{"speaking_up":{"score":4,"max":4,"percentage":100}}`),
			OverallScore:  100,
			CompletedAt:   day2,
		})
		assert.ErrorIs(t, err, repository.ErrConflict)

		r, err := repo.GetResponse(ctx, "racy")
		require.NoError(t, err)
		assert.Nil(t, r.CompletedAt)

		require.NoError(t, repo.CompleteResponse(ctx, "racy", models.Completion{
			Answers:       r.Answers,
			SectionScores: []byte(`{"speaking_up":{"score":1,"max":4,"percentage":25}}`),
			OverallScore:  25,
			CompletedAt:   day2,
		}))
	})
}

func TestResponseRepository_ClosedDB(t *testing.T) {
	db, repo := setupTestDB(t)
	require.NoError(t, db.Close())

	_, err := repo.ListCompleted(context.Background(), "comms-2025", time.Time{}, time.Time{})
	assert.Error(t, err)
	_, err = repo.GetResponse(context.Background(), "r1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
