package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/preplab/mockexam-backend/internal/attempt"
	"github.com/preplab/mockexam-backend/internal/model"
)

// TestRepository handles test and question data access. It is the question
// source collaborator: LoadQuestionSet is the only way a validated
// attempt.QuestionSet enters the system.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test definition.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, author_id, duration_seconds, question_count, status, created_at, updated_at
		 FROM tests
		 WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.AuthorID, &t.DurationSeconds, &t.QuestionCount, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListPublished retrieves all tests visible in the catalog.
func (r *TestRepository) ListPublished(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, author_id, duration_seconds, question_count, status, created_at, updated_at
		 FROM tests
		 WHERE status = $1
		 ORDER BY created_at DESC`, model.TestStatusPublished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Title, &t.AuthorID, &t.DurationSeconds, &t.QuestionCount, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// Create inserts a new draft test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, author_id, duration_seconds, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.AuthorID, t.DurationSeconds, model.TestStatusDraft,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// SetStatus transitions a test's lifecycle status.
func (r *TestRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.TestStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// ReplaceQuestions swaps a test's entire question list in one transaction
// and refreshes the cached question count.
func (r *TestRepository) ReplaceQuestions(ctx context.Context, testID uuid.UUID, questions []model.QuestionInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE test_id = $1`, testID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	for i, q := range questions {
		optionsJSON, err := optionsToJSON(q.Options)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions (test_id, prompt, options, correct_option, explanation, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			testID, q.Prompt, optionsJSON, q.CorrectOption, q.Explanation, i,
		); err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE tests SET question_count = $1, updated_at = NOW() WHERE id = $2`,
		len(questions), testID,
	); err != nil {
		return fmt.Errorf("update question count: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadQuestionSet reads a test plus its ordered questions and builds the
// validated immutable QuestionSet. Returns pgx.ErrNoRows if the test does
// not exist; QuestionSet invariant violations surface as attempt errors.
func (r *TestRepository) LoadQuestionSet(ctx context.Context, testID uuid.UUID) (*attempt.QuestionSet, error) {
	t, err := r.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, prompt, options, correct_option, explanation
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY order_num ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []attempt.Question
	for rows.Next() {
		var (
			q           attempt.Question
			optionsJSON []byte
			explanation *string
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &optionsJSON, &q.CorrectOption, &explanation); err != nil {
			return nil, err
		}
		if q.Options, err = optionsFromJSON(optionsJSON); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		if explanation != nil {
			q.Explanation = *explanation
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attempt.NewQuestionSet(t.ID, t.Title, time.Duration(t.DurationSeconds)*time.Second, questions)
}

// IsNotFound reports whether err is the driver's no-rows sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func optionsToJSON(options []model.QuestionOptionInput) ([]byte, error) {
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return raw, nil
}

func optionsFromJSON(raw []byte) ([]attempt.Option, error) {
	var options []attempt.Option
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return options, nil
}
