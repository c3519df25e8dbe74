package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/preplab/mockexam-backend/internal/attempt"
	"github.com/preplab/mockexam-backend/internal/model"
)

// ResultRepository is the result sink collaborator: it persists finished
// score reports. The unique (test_id, user_id) constraint backs the
// at-most-one-stored-result guarantee at the storage layer.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert stores a score report, including the ledger snapshot verbatim.
func (r *ResultRepository) Insert(ctx context.Context, report *attempt.ScoreReport) (uuid.UUID, error) {
	answers, err := json.Marshal(report.Answers)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode answers: %w", err)
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx,
		`INSERT INTO results
		   (test_id, user_id, score, total_questions, attempted_questions,
		    correct_answers, incorrect_answers, time_taken_seconds, completed_at, answers)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		report.TestID, report.UserID, report.Score, report.TotalQuestions,
		report.AttemptedQuestions, report.CorrectAnswers, report.IncorrectAnswers,
		report.TimeTakenSeconds, report.CompletedAt, answers,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetByTestAndUser retrieves the stored result for one attempt, if any.
func (r *ResultRepository) GetByTestAndUser(ctx context.Context, testID uuid.UUID, userID int) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, user_id, score, total_questions, attempted_questions,
		        correct_answers, incorrect_answers, time_taken_seconds, completed_at, answers
		 FROM results
		 WHERE test_id = $1 AND user_id = $2`, testID, userID,
	).Scan(&res.ID, &res.TestID, &res.UserID, &res.Score, &res.TotalQuestions,
		&res.Attempted, &res.Correct, &res.Incorrect, &res.TimeTakenSeconds,
		&res.CompletedAt, &res.Answers)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByTest retrieves all stored results for a test, newest first.
func (r *ResultRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, user_id, score, total_questions, attempted_questions,
		        correct_answers, incorrect_answers, time_taken_seconds, completed_at, answers
		 FROM results
		 WHERE test_id = $1
		 ORDER BY completed_at DESC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.TestID, &res.UserID, &res.Score, &res.TotalQuestions,
			&res.Attempted, &res.Correct, &res.Incorrect, &res.TimeTakenSeconds,
			&res.CompletedAt, &res.Answers); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
