package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	query := `SELECT id FROM responses WHERE survey_id = ? AND completed_at >= ?`

	assert.Equal(t, query, NewResponseRepository(nil, "sqlite3").rebind(query))
	assert.Equal(t,
		`SELECT id FROM responses WHERE survey_id = $1 AND completed_at >= $2`,
		NewResponseRepository(nil, "pgx").rebind(query))
}
