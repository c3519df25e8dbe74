package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/preplab/mockexam-backend/internal/attempt"
	"github.com/preplab/mockexam-backend/internal/middleware"
	"github.com/preplab/mockexam-backend/internal/model"
	"github.com/preplab/mockexam-backend/internal/response"
	"github.com/preplab/mockexam-backend/internal/service"
	"github.com/preplab/mockexam-backend/internal/validator"
)

// AttemptHandler handles the timed test-taking session endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// auth pulls the authenticated user and the :test_id path param. Returns
// false after writing the error response if either is missing.
func (h *AttemptHandler) auth(c *gin.Context) (int, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, uuid.Nil, false
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, uuid.Nil, false
	}

	return claims.UserID, testID, true
}

// Start godoc
// POST /api/v1/attempts/:test_id/start
// Creates or rejoins the attempt. Starting is idempotent while in progress.
func (h *AttemptHandler) Start(c *gin.Context) {
	userID, testID, ok := h.auth(c)
	if !ok {
		return
	}

	state, err := h.attemptService.Start(c.Request.Context(), testID, userID)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, state)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrTestNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrTestNotPublished)
	case errors.Is(err, attempt.ErrInvalidDuration), errors.Is(err, attempt.ErrEmptyQuestionSet):
		// Malformed test definition; must be fixed by the author before
		// any attempt can start.
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Answer godoc
// POST /api/v1/attempts/:test_id/answers
func (h *AttemptHandler) Answer(c *gin.Context) {
	userID, testID, ok := h.auth(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	err = h.attemptService.RecordAnswer(c.Request.Context(), testID, userID, questionID, req.OptionID)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"status": "saved"})
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
	case errors.Is(err, service.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GoTo godoc
// POST /api/v1/attempts/:test_id/goto
func (h *AttemptHandler) GoTo(c *gin.Context) {
	userID, testID, ok := h.auth(c)
	if !ok {
		return
	}

	var req model.GoToRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	index, err := h.attemptService.GoTo(testID, userID, req.Index)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"current_index": index})
}

// State godoc
// GET /api/v1/attempts/:test_id/state
// Page-reload recovery: answered questions, position, and remaining time.
func (h *AttemptHandler) State(c *gin.Context) {
	userID, testID, ok := h.auth(c)
	if !ok {
		return
	}

	state, err := h.attemptService.State(testID, userID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/attempts/:test_id/submit
// 200 with the score report; 409 when already submitted (including the
// losing side of a manual/expiry race); 503 retryable when the result
// store is unavailable.
func (h *AttemptHandler) Submit(c *gin.Context) {
	userID, testID, ok := h.auth(c)
	if !ok {
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	trigger := attempt.TriggerManual
	if req.Trigger == string(attempt.TriggerTimerExpiry) {
		trigger = attempt.TriggerTimerExpiry
	}

	report, err := h.attemptService.Submit(c.Request.Context(), testID, userID, trigger)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"report": report})
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, attempt.ErrSubmissionFailed):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSubmissionFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Result godoc
// GET /api/v1/attempts/:test_id/result
func (h *AttemptHandler) Result(c *gin.Context) {
	userID, testID, ok := h.auth(c)
	if !ok {
		return
	}

	result, err := h.attemptService.Result(c.Request.Context(), testID, userID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
