package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/commhealth/internal/repository/models"
)

var (
	// ErrNotFound is returned when no response has the requested id.
	ErrNotFound = errors.New("response not found")
	// ErrAlreadyCompleted is returned when writing to a completed response.
	ErrAlreadyCompleted = errors.New("response already completed")
	// ErrConflict is returned when the stored answers no longer match the ones
	// a completion was scored from.
	ErrConflict = errors.New("response answers changed")
)

// Timestamps are stored as fixed-width UTC text so range filters compare lexically
// on every driver.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	id TEXT PRIMARY KEY,
	survey_id TEXT NOT NULL,
	respondent_department TEXT,
	respondent_role TEXT,
	respondent_company TEXT,
	company_size TEXT,
	answers TEXT NOT NULL,
	section_scores TEXT,
	overall_score REAL,
	started_at TEXT NOT NULL,
	completed_at TEXT
);
CREATE INDEX IF NOT EXISTS responses_survey_completed_idx ON responses(survey_id, completed_at);
`

const selectColumns = `
	id, survey_id, respondent_department, respondent_role, respondent_company, company_size,
	answers, section_scores, overall_score, started_at, completed_at`

type ResponseRepository struct {
	db     *sql.DB
	driver string
}

// NewResponseRepository wraps db. driver selects the placeholder style.
func NewResponseRepository(db *sql.DB, driver string) *ResponseRepository {
	return &ResponseRepository{db: db, driver: driver}
}

// EnsureSchema creates the responses table when missing.
func (s *ResponseRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// CreateResponse inserts a new, incomplete response.
func (s *ResponseRepository) CreateResponse(ctx context.Context, r models.Response) error {
	const query = `
		INSERT INTO responses (
			id, survey_id, respondent_department, respondent_role, respondent_company, company_size,
			answers, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	answers := r.Answers
	if len(answers) == 0 {
		answers = []byte("{}")
	}
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		r.ID, r.SurveyID,
		nullString(r.Department), nullString(r.Role), nullString(r.Company), nullString(r.CompanySize),
		string(answers), r.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// GetResponse loads a single response by id.
func (s *ResponseRepository) GetResponse(ctx context.Context, id string) (models.Response, error) {
	query := `SELECT` + selectColumns + ` FROM responses WHERE id = ?`

	r, err := scanResponse(s.db.QueryRowContext(ctx, s.rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Response{}, ErrNotFound
		}
		return models.Response{}, fmt.Errorf("query GetResponse: %w", err)
	}
	return r, nil
}

// UpdateAnswers replaces the stored answers of an incomplete response.
func (s *ResponseRepository) UpdateAnswers(ctx context.Context, id string, answers []byte) error {
	const query = `UPDATE responses SET answers = ? WHERE id = ? AND completed_at IS NULL`

	res, err := s.db.ExecContext(ctx, s.rebind(query), string(answers), id)
	if err != nil {
		return fmt.Errorf("update answers: %w", err)
	}
	return s.checkWritable(ctx, res, id)
}

// CompleteResponse stores the canonical scores and marks the response completed.
// Only incomplete responses whose answers still equal c.Answers can be completed.
func (s *ResponseRepository) CompleteResponse(ctx context.Context, id string, c models.Completion) error {
	const query = `
		UPDATE responses
		SET section_scores = ?, overall_score = ?, completed_at = ?
		WHERE id = ? AND completed_at IS NULL AND answers = ?
	`
	res, err := s.db.ExecContext(ctx, s.rebind(query),
		string(c.SectionScores), c.OverallScore, c.CompletedAt.UTC().Format(timeLayout), id, string(c.Answers))
	if err != nil {
		return fmt.Errorf("complete response: %w", err)
	}
	return s.checkWritable(ctx, res, id)
}

// ListCompleted returns completed responses of a survey whose completion time
// falls in [from, to]. Zero bounds are open.
func (s *ResponseRepository) ListCompleted(ctx context.Context, surveyID string, from, to time.Time) ([]models.Response, error) {
	var (
		sb   strings.Builder
		args = []any{surveyID}
	)
	sb.WriteString(`SELECT` + selectColumns + ` FROM responses WHERE survey_id = ? AND completed_at IS NOT NULL`)
	if !from.IsZero() {
		sb.WriteString(` AND completed_at >= ?`)
		args = append(args, from.UTC().Format(timeLayout))
	}
	if !to.IsZero() {
		sb.WriteString(` AND completed_at <= ?`)
		args = append(args, to.UTC().Format(timeLayout))
	}
	sb.WriteString(` ORDER BY completed_at, id`)

	rows, err := s.db.QueryContext(ctx, s.rebind(sb.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("query ListCompleted: %w", err)
	}
	defer rows.Close()

	var results []models.Response
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ListCompleted row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListCompleted: %w", err)
	}
	return results, nil
}

func (s *ResponseRepository) checkWritable(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	current, err := s.GetResponse(ctx, id)
	if err != nil {
		return err
	}
	if current.CompletedAt != nil {
		return ErrAlreadyCompleted
	}
	return ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(row rowScanner) (models.Response, error) {
	var (
		r                                   models.Response
		dept, role, company, size           sql.NullString
		answers, sectionScores, completedAt sql.NullString
		overall                             sql.NullFloat64
		startedAt                           string
	)
	if err := row.Scan(&r.ID, &r.SurveyID, &dept, &role, &company, &size,
		&answers, &sectionScores, &overall, &startedAt, &completedAt); err != nil {
		return models.Response{}, err
	}

	r.Department, r.Role, r.Company, r.CompanySize = dept.String, role.String, company.String, size.String
	if answers.Valid {
		r.Answers = []byte(answers.String)
	}
	if sectionScores.Valid {
		r.SectionScores = []byte(sectionScores.String)
	}
	if overall.Valid {
		v := overall.Float64
		r.OverallScore = &v
	}

	started, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return models.Response{}, fmt.Errorf("parse started_at: %w", err)
	}
	r.StartedAt = started
	if completedAt.Valid {
		t, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return models.Response{}, fmt.Errorf("parse completed_at: %w", err)
		}
		r.CompletedAt = &t
	}
	return r, nil
}

// rebind rewrites ? placeholders to $n for the pgx driver.
func (s *ResponseRepository) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
