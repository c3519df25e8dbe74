package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/preplab/mockexam-backend/internal/attempt"
	"github.com/preplab/mockexam-backend/internal/middleware"
	"github.com/preplab/mockexam-backend/internal/service"
	ws "github.com/preplab/mockexam-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams attempt interactions: low-latency answer capture,
// countdown resync, and submission, all through the same controller as the
// HTTP endpoints.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:test_id/stream
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	userID := claims.UserID

	// SECURITY: only stream for an attempt the user actually started.
	if err := h.attemptService.VerifyActive(testID, userID); err != nil {
		ws.WriteError(conn, "no active attempt for this test")
		return
	}

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("test_id", testID.String()).
		Logger()

	wsLog.Info().Msg("Attempt stream connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Stream closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(c, conn, testID, userID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(c, conn, wsLog, testID, userID)
			return // terminal either way: submitted or conflict
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{
				Event:            ws.EventPong,
				RemainingSeconds: h.remainingSeconds(testID, userID),
			})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) remainingSeconds(testID uuid.UUID, userID int) int {
	state, err := h.attemptService.State(testID, userID)
	if err != nil {
		return 0
	}
	return state.RemainingSeconds
}

func (h *WSHandler) handleAnswer(c *gin.Context, conn *websocket.Conn, testID uuid.UUID, userID int, msg *ws.RequestPayload) {
	if msg.QuestionID == "" || msg.OptionID == "" {
		ws.WriteError(conn, "question_id and option_id are required")
		return
	}

	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		ws.WriteError(conn, "invalid question_id format")
		return
	}

	err = h.attemptService.RecordAnswer(c.Request.Context(), testID, userID, questionID, msg.OptionID)
	switch {
	case err == nil:
		ws.WriteTyped(conn, ws.SavedResponse{
			Event:            ws.EventSaved,
			RemainingSeconds: h.remainingSeconds(testID, userID),
		})
	case errors.Is(err, service.ErrUnknownQuestion):
		ws.WriteError(conn, "question does not belong to this test")
	case errors.Is(err, service.ErrAlreadySubmitted):
		ws.WriteError(conn, "attempt already submitted")
	default:
		ws.WriteError(conn, "save failed")
	}
}

func (h *WSHandler) handleSubmit(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, testID uuid.UUID, userID int) {
	report, err := h.attemptService.Submit(c.Request.Context(), testID, userID, attempt.TriggerManual)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadySubmitted):
			ws.WriteError(conn, "attempt already submitted")
		case errors.Is(err, attempt.ErrSubmissionFailed):
			ws.WriteError(conn, "result store unavailable, please retry")
		default:
			ws.WriteError(conn, "submit failed")
		}
		return
	}

	wsLog.Info().
		Int("score", report.Score).
		Int("attempted", report.AttemptedQuestions).
		Int("total", report.TotalQuestions).
		Dur("elapsed", time.Duration(report.TimeTakenSeconds)*time.Second).
		Msg("Attempt submitted over stream")

	ws.WriteTyped(conn, ws.GradedResponse{
		Event:  ws.EventGraded,
		Status: "completed",
		Report: report,
	})
}
