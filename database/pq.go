package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/andikahmadi/sikp-backend/config"
)

// ReportingStore is a raw database/sql store used for read-only reporting
// queries that aggregate across tables (evaluation recaps). It shares the
// Postgres instance with the GORM store but keeps its own connection.
type ReportingStore struct {
	db *sql.DB
}

// StartReporting opens the lib/pq connection for the reporting store
func StartReporting() (*ReportingStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		fmt.Println("Unable to start PostgreSQL reporting connection.")
		return nil, err
	}

	log.Println("Successfully connected reporting store to PostgreSQL Database.")
	return &ReportingStore{db: db}, nil
}

func (s *ReportingStore) Init() error {
	// Tables are owned and migrated by the GORM store
	return nil
}

func (s *ReportingStore) Close() error {
	log.Println("Closing PostgreSQL reporting connection.")
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *ReportingStore) HealthCheck() error {
	return s.db.Ping()
}

// GetDB returns the underlying *sql.DB
func (s *ReportingStore) GetDB() interface{} {
	return s.db
}

// EvaluationRecapRow is one student's aggregated evaluation scores
type EvaluationRecapRow struct {
	StudentID       string   `json:"student_id"`
	StudentName     string   `json:"student_name"`
	NIM             string   `json:"nim"`
	SupervisorScore *float64 `json:"supervisor_score"`
	FieldScore      *float64 `json:"field_supervisor_score"`
	AverageScore    *float64 `json:"average_score"`
}

// EvaluationRecap aggregates both evaluator scores per student into one row.
// Students without any evaluation are excluded.
func (s *ReportingStore) EvaluationRecap(ctx context.Context) ([]EvaluationRecapRow, error) {
	const query = `
		SELECT
			p.id,
			p.full_name,
			COALESCE(p.nim, ''),
			MAX(e.score) FILTER (WHERE e.evaluator_type = 'supervisor'),
			MAX(e.score) FILTER (WHERE e.evaluator_type = 'field_supervisor'),
			AVG(e.score)
		FROM evaluations e
		JOIN profiles p ON p.id = e.student_id
		GROUP BY p.id, p.full_name, p.nim
		ORDER BY p.full_name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation recap: %w", err)
	}
	defer rows.Close()

	var recap []EvaluationRecapRow
	for rows.Next() {
		var row EvaluationRecapRow
		if err := rows.Scan(&row.StudentID, &row.StudentName, &row.NIM,
			&row.SupervisorScore, &row.FieldScore, &row.AverageScore); err != nil {
			return nil, fmt.Errorf("failed to scan recap row: %w", err)
		}
		recap = append(recap, row)
	}

	return recap, rows.Err()
}
