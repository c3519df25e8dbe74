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

// CatalogHandler handles test browsing and author-side test management.
type CatalogHandler struct {
	catalog        *service.CatalogService
	attemptService *service.AttemptService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, attemptService *service.AttemptService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, attemptService: attemptService}
}

// ListTests godoc
// GET /api/v1/tests
func (h *CatalogHandler) ListTests(c *gin.Context) {
	tests, err := h.catalog.ListPublished(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if tests == nil {
		tests = []model.Test{}
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// GetPaper godoc
// GET /api/v1/tests/:test_id/paper
// Returns the cached question payload without answer keys.
// SECURITY: requires an active attempt, so papers cannot be fetched for
// tests the user never started.
func (h *CatalogHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.attemptService.VerifyActive(testID, claims.UserID); err != nil {
		response.Fail(c, http.StatusForbidden, response.ErrNoActiveAttempt)
		return
	}

	payload, err := h.catalog.GetPaper(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrTestNotPublished)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// CreateTest godoc
// POST /api/v1/author/tests
func (h *CatalogHandler) CreateTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test := &model.Test{
		Title:           req.Title,
		AuthorID:        claims.UserID,
		DurationSeconds: req.DurationSeconds,
		Status:          model.TestStatusDraft,
	}
	if err := h.catalog.Create(c.Request.Context(), test); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// ReplaceQuestions godoc
// PUT /api/v1/author/tests/:test_id/questions
func (h *CatalogHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReplaceQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err = h.catalog.ReplaceQuestions(c.Request.Context(), testID, claims.UserID, &req)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"status": "replaced", "count": len(req.Questions)})
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotTestAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotTestAuthor)
	case errors.Is(err, attempt.ErrBadAnswerKey),
		errors.Is(err, attempt.ErrDuplicateQuestion),
		errors.Is(err, attempt.ErrEmptyQuestionSet):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ListResults godoc
// GET /api/v1/author/tests/:test_id/results
// Lists every stored result for the author's test, newest first.
func (h *CatalogHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.attemptService.ResultsForTest(c.Request.Context(), testID, claims.UserID)
	switch {
	case err == nil:
		if results == nil {
			results = []model.Result{}
		}
		response.Success(c, http.StatusOK, gin.H{"results": results})
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotTestAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotTestAuthor)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// PublishTest godoc
// POST /api/v1/author/tests/:test_id/publish
func (h *CatalogHandler) PublishTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	err = h.catalog.Publish(c.Request.Context(), testID, claims.UserID)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"status": "published"})
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotTestAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotTestAuthor)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
