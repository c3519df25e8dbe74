package service

import (
	"context"
	"fmt"
	"time"

	"github.com/preplab/mockexam-backend/internal/attempt"
	"github.com/preplab/mockexam-backend/internal/config"
	"github.com/preplab/mockexam-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// resultLockTTL bounds how long a persistence lock can outlive its attempt.
const resultLockTTL = time.Hour

// resultSubmitter adapts the result repository to attempt.ResultSink. The
// controller's own guard already prevents re-entrant submissions in
// process; the Redis SETNX lock covers the multi-process case. The lock is
// released on persistence failure so a retry can proceed.
type resultSubmitter struct {
	repo *repository.ResultRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

func newResultSubmitter(repo *repository.ResultRepository, rdb *redis.Client, log zerolog.Logger) *resultSubmitter {
	return &resultSubmitter{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "result_submitter").Logger(),
	}
}

// Submit persists a score report at most once per attempt.
func (s *resultSubmitter) Submit(ctx context.Context, report *attempt.ScoreReport) error {
	lockKey := config.CacheKey.ResultLockKey(report.TestID.String(), report.UserID)

	acquired, err := s.rdb.SetNX(ctx, lockKey, 1, resultLockTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire result lock: %w", err)
	}
	if !acquired {
		// Another process already stored this attempt's result.
		s.log.Warn().
			Str("test_id", report.TestID.String()).
			Int("user_id", report.UserID).
			Msg("Result lock already held, skipping duplicate persist")
		return nil
	}

	resultID, err := s.repo.Insert(ctx, report)
	if err != nil {
		// Release the lock so the user can retry the submission.
		s.rdb.Del(ctx, lockKey)
		return fmt.Errorf("persist result: %w", err)
	}

	// The saved-answer mirror is only crash-recovery state; drop it now
	// that the authoritative result row exists.
	s.rdb.Del(ctx, config.CacheKey.AttemptAnswersKey(report.TestID.String(), report.UserID))

	s.log.Info().
		Str("result_id", resultID.String()).
		Str("test_id", report.TestID.String()).
		Int("user_id", report.UserID).
		Int("score", report.Score).
		Msg("Result stored")
	return nil
}
