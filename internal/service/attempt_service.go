package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/preplab/mockexam-backend/internal/attempt"
	"github.com/preplab/mockexam-backend/internal/config"
	"github.com/preplab/mockexam-backend/internal/model"
	"github.com/preplab/mockexam-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Attempt errors surfaced to handlers.
var (
	ErrAttemptNotFound  = errors.New("no active attempt for this test")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrUnknownQuestion  = errors.New("question does not belong to this test")
	ErrResultNotFound   = errors.New("no stored result for this test")
)

// AttemptService owns the registry of live attempt controllers, one per
// (test, user). Controllers live in process memory — the state machine and
// its countdown are the core — while Redis mirrors answers and start times
// for page-reload recovery and queues them for durable autosave.
type AttemptService struct {
	catalog    *CatalogService
	resultRepo *repository.ResultRepository
	submitter  attempt.ResultSink
	rdb        *redis.Client
	log        zerolog.Logger

	mu   sync.Mutex
	live map[string]*attempt.Controller
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	catalog *CatalogService,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		catalog:    catalog,
		resultRepo: resultRepo,
		submitter:  newResultSubmitter(resultRepo, rdb, log),
		rdb:        rdb,
		log:        log.With().Str("component", "attempt_service").Logger(),
		live:       make(map[string]*attempt.Controller),
	}
}

func attemptKey(testID uuid.UUID, userID int) string {
	return fmt.Sprintf("%d:%s", userID, testID)
}

func (s *AttemptService) controller(testID uuid.UUID, userID int) (*attempt.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.live[attemptKey(testID, userID)]
	return c, ok
}

// Start creates the attempt for (test, user) or rejoins the existing one —
// starting twice is idempotent, matching forgiving page-reload behavior.
// A stored result means the attempt already finished: ErrAlreadySubmitted.
func (s *AttemptService) Start(ctx context.Context, testID uuid.UUID, userID int) (*model.AttemptStateResponse, error) {
	if c, ok := s.controller(testID, userID); ok {
		// A timer-expiry submission finishes the attempt without passing
		// through Submit below; evict such controllers lazily.
		if c.Status() == attempt.StatusSubmitted {
			s.finish(ctx, testID, userID)
			return nil, ErrAlreadySubmitted
		}
		return s.stateOf(c), nil
	}

	if _, err := s.resultRepo.GetByTestAndUser(ctx, testID, userID); err == nil {
		return nil, ErrAlreadySubmitted
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("check stored result: %w", err)
	}

	set, err := s.catalog.LoadQuestionSet(ctx, testID)
	if err != nil {
		return nil, err
	}

	c, err := attempt.NewController(set, userID, s.submitter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Concurrent Start on the same pair: keep the first controller so its
	// countdown stays authoritative. The loser must be aborted, not just
	// dropped, or its already-running countdown would later submit an empty
	// report through the shared sink.
	if existing, ok := s.live[attemptKey(testID, userID)]; ok {
		s.mu.Unlock()
		c.Abort()
		return s.stateOf(existing), nil
	}
	s.live[attemptKey(testID, userID)] = c
	s.mu.Unlock()

	startKey := config.CacheKey.AttemptStartKey(testID.String(), userID)
	if err := s.rdb.Set(ctx, startKey, c.StartedAt().Unix(), set.Duration+time.Hour).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache attempt start time")
	}

	s.log.Info().
		Str("test_id", testID.String()).
		Int("user_id", userID).
		Int("questions", set.Len()).
		Msg("Attempt started")

	return s.stateOf(c), nil
}

// RecordAnswer upserts one answer on the live attempt, mirrors it to the
// Redis hash for reload recovery, and queues it for durable autosave.
func (s *AttemptService) RecordAnswer(ctx context.Context, testID uuid.UUID, userID int, questionID uuid.UUID, optionID string) error {
	c, ok := s.controller(testID, userID)
	if !ok {
		return ErrAttemptNotFound
	}
	if _, ok := c.Set().Lookup(questionID); !ok {
		return ErrUnknownQuestion
	}
	if !c.RecordAnswer(questionID, optionID) {
		return ErrAlreadySubmitted
	}

	answersKey := config.CacheKey.AttemptAnswersKey(testID.String(), userID)
	if err := s.rdb.HSet(ctx, answersKey, questionID.String(), optionID).Err(); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Answer mirror write failed")
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":     userID,
		"test_id":     testID.String(),
		"question_id": questionID.String(),
		"option_id":   optionID,
	})
	s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload)

	return nil
}

// GoTo moves the current question index, clamped to the question range.
func (s *AttemptService) GoTo(testID uuid.UUID, userID int, index int) (int, error) {
	c, ok := s.controller(testID, userID)
	if !ok {
		return 0, ErrAttemptNotFound
	}
	return c.GoTo(index), nil
}

// State returns the live attempt state for page-reload recovery.
func (s *AttemptService) State(testID uuid.UUID, userID int) (*model.AttemptStateResponse, error) {
	c, ok := s.controller(testID, userID)
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return s.stateOf(c), nil
}

// Submit finishes the attempt through the controller's guarded path.
// Duplicate submissions (including the losing side of the manual/expiry
// race) surface as ErrAlreadySubmitted; sink failures keep the attempt
// retryable and bubble up wrapped in attempt.ErrSubmissionFailed.
func (s *AttemptService) Submit(ctx context.Context, testID uuid.UUID, userID int, trigger attempt.Trigger) (*attempt.ScoreReport, error) {
	c, ok := s.controller(testID, userID)
	if !ok {
		return nil, ErrAttemptNotFound
	}

	report, err := c.Submit(ctx, trigger)
	if err != nil {
		if errors.Is(err, attempt.ErrDuplicateSubmit) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}

	s.finish(ctx, testID, userID)

	s.log.Info().
		Str("test_id", testID.String()).
		Int("user_id", userID).
		Str("trigger", string(trigger)).
		Int("score", report.Score).
		Int("attempted", report.AttemptedQuestions).
		Msg("Attempt submitted")

	return report, nil
}

// VerifyActive ensures a live attempt exists. Guards paper and stream
// access so a user cannot fetch questions for a test they never started.
func (s *AttemptService) VerifyActive(testID uuid.UUID, userID int) error {
	if _, ok := s.controller(testID, userID); !ok {
		return ErrAttemptNotFound
	}
	return nil
}

// Result returns the stored score report for a finished attempt.
func (s *AttemptService) Result(ctx context.Context, testID uuid.UUID, userID int) (*model.Result, error) {
	res, err := s.resultRepo.GetByTestAndUser(ctx, testID, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return res, nil
}

// ResultsForTest returns every stored result for a test, newest first. Only
// the test's author may list them.
func (s *AttemptService) ResultsForTest(ctx context.Context, testID uuid.UUID, authorID int) ([]model.Result, error) {
	t, err := s.catalog.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if t.AuthorID != authorID {
		return nil, ErrNotTestAuthor
	}
	return s.resultRepo.ListByTest(ctx, testID)
}

// finish drops the controller from the registry and clears reload-recovery
// keys. The submitter already removed the answer mirror.
func (s *AttemptService) finish(ctx context.Context, testID uuid.UUID, userID int) {
	s.mu.Lock()
	delete(s.live, attemptKey(testID, userID))
	s.mu.Unlock()

	s.rdb.Del(ctx, config.CacheKey.AttemptStartKey(testID.String(), userID))
}

func (s *AttemptService) stateOf(c *attempt.Controller) *model.AttemptStateResponse {
	answers := make(map[string]string)
	for _, e := range c.Answers() {
		answers[e.QuestionID.String()] = e.OptionID
	}

	return &model.AttemptStateResponse{
		TestID:           c.Set().TestID,
		Status:           string(c.Status()),
		CurrentIndex:     c.Current(),
		RemainingSeconds: int(c.Remaining() / time.Second),
		Answers:          answers,
		StartedAt:        c.StartedAt(),
	}
}
