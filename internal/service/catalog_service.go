package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/preplab/mockexam-backend/internal/attempt"
	"github.com/preplab/mockexam-backend/internal/config"
	"github.com/preplab/mockexam-backend/internal/model"
	"github.com/preplab/mockexam-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrTestNotFound     = errors.New("test not found")
	ErrTestNotPublished = errors.New("test is not published")
	ErrNotTestAuthor    = errors.New("not the author of this test")
	ErrNoQuestions      = errors.New("test has no questions")
)

// CatalogService handles test definitions and the Redis paper cache. It is
// the question-source collaborator seen by the attempt layer: question sets
// are loaded and validated once, cached, and never re-parsed per request.
type CatalogService struct {
	testRepo *repository.TestRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(testRepo *repository.TestRepository, rdb *redis.Client, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		testRepo: testRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "catalog_service").Logger(),
	}
}

// ListPublished returns the catalog of published tests.
func (s *CatalogService) ListPublished(ctx context.Context) ([]model.Test, error) {
	return s.testRepo.ListPublished(ctx)
}

// GetTest returns one test definition.
func (s *CatalogService) GetTest(ctx context.Context, testID uuid.UUID) (*model.Test, error) {
	t, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts a new draft test owned by the author.
func (s *CatalogService) Create(ctx context.Context, t *model.Test) error {
	return s.testRepo.Create(ctx, t)
}

// ReplaceQuestions swaps a test's question list. Only the author may edit,
// and the incoming questions must already satisfy the answer-key invariant
// (checked by building a throwaway QuestionSet before touching storage).
func (s *CatalogService) ReplaceQuestions(ctx context.Context, testID uuid.UUID, authorID int, req *model.ReplaceQuestionsRequest) error {
	t, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrTestNotFound
		}
		return err
	}
	if t.AuthorID != authorID {
		return ErrNotTestAuthor
	}

	// Validate before writing: reject malformed question sets at load time,
	// not at score time.
	probe := make([]attempt.Question, len(req.Questions))
	for i, q := range req.Questions {
		options := make([]attempt.Option, len(q.Options))
		for j, o := range q.Options {
			options[j] = attempt.Option{ID: o.ID, Text: o.Text}
		}
		probe[i] = attempt.Question{
			ID:            uuid.New(),
			Prompt:        q.Prompt,
			Options:       options,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		}
	}
	if _, err := attempt.NewQuestionSet(testID, t.Title, time.Duration(t.DurationSeconds)*time.Second, probe); err != nil {
		return err
	}

	if err := s.testRepo.ReplaceQuestions(ctx, testID, req.Questions); err != nil {
		return err
	}

	// Keep the cached paper in sync with storage: the payload key has no TTL,
	// so a published test's paper must be rewarmed here or GetPaper would keep
	// serving question ids the attempt controller no longer knows.
	if t.Status == model.TestStatusPublished {
		return s.WarmTestCache(ctx, testID)
	}
	s.rdb.Del(ctx, config.CacheKey.TestPayloadKey(testID.String()))
	return nil
}

// Publish transitions a test to PUBLISHED and warms its paper cache.
func (s *CatalogService) Publish(ctx context.Context, testID uuid.UUID, authorID int) error {
	t, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrTestNotFound
		}
		return err
	}
	if t.AuthorID != authorID {
		return ErrNotTestAuthor
	}
	if t.QuestionCount == 0 {
		return ErrNoQuestions
	}

	if err := s.testRepo.SetStatus(ctx, testID, model.TestStatusPublished); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return s.WarmTestCache(ctx, testID)
}

// LoadQuestionSet returns the validated QuestionSet for a published test.
// The repository is the source of truth; the Redis payload cache only serves
// client-facing papers.
func (s *CatalogService) LoadQuestionSet(ctx context.Context, testID uuid.UUID) (*attempt.QuestionSet, error) {
	t, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	if t.Status != model.TestStatusPublished {
		return nil, ErrTestNotPublished
	}
	return s.testRepo.LoadQuestionSet(ctx, testID)
}

// GetPaper returns the client-facing paper (no answer keys), preferring the
// Redis cache and self-healing it on a miss.
func (s *CatalogService) GetPaper(ctx context.Context, testID uuid.UUID) (*model.TestPayload, error) {
	key := config.CacheKey.TestPayloadKey(testID.String())

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		payload := &model.TestPayload{}
		if err := json.Unmarshal([]byte(raw), payload); err == nil {
			return payload, nil
		}
		// Corrupt cache entry: fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get paper cache: %w", err)
	}

	if err := s.WarmTestCache(ctx, testID); err != nil {
		return nil, err
	}

	raw, err = s.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("get paper after warm: %w", err)
	}
	payload := &model.TestPayload{}
	if err := json.Unmarshal([]byte(raw), payload); err != nil {
		return nil, fmt.Errorf("decode paper: %w", err)
	}
	return payload, nil
}

// WarmTestCache builds the answer-key-free paper for a test and stores it
// in Redis. Used by Publish, cache misses, and startup prewarm.
func (s *CatalogService) WarmTestCache(ctx context.Context, testID uuid.UUID) error {
	set, err := s.testRepo.LoadQuestionSet(ctx, testID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrTestNotFound
		}
		return err
	}

	payload := model.TestPayload{
		TestID:          set.TestID,
		Title:           set.Title,
		DurationSeconds: int(set.Duration / time.Second),
		Questions:       make([]model.QuestionForStudent, 0, set.Len()),
	}
	for _, q := range set.Questions() {
		options := make([]model.QuestionOptionInput, len(q.Options))
		for i, o := range q.Options {
			options[i] = model.QuestionOptionInput{ID: o.ID, Text: o.Text}
		}
		payload.Questions = append(payload.Questions, model.QuestionForStudent{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: options,
		})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode paper: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.TestPayloadKey(testID.String()), raw, 0).Err(); err != nil {
		return fmt.Errorf("cache paper: %w", err)
	}
	return nil
}

// PrewarmAllCaches loads every published test's paper into Redis before the
// server accepts traffic, avoiding a lazy-load thundering herd.
func (s *CatalogService) PrewarmAllCaches(ctx context.Context) error {
	tests, err := s.testRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published: %w", err)
	}

	s.log.Info().Int("count", len(tests)).Msg("Prewarming published test papers...")

	warmed := 0
	for _, t := range tests {
		if err := s.WarmTestCache(ctx, t.ID); err != nil {
			s.log.Warn().Err(err).Str("test_id", t.ID.String()).Msg("Prewarm failed for test")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Msg("Prewarming complete")
	return nil
}
