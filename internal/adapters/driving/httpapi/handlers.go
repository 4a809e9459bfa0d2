package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driving"
)

// maxQuestionBytes bounds the request body of POST /ask.
const maxQuestionBytes = 64 << 10

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

// AskResponse is the body of a successful POST /ask.
type AskResponse struct {
	Answer     string                      `json:"answer"`
	References []domain.RetrievedCandidate `json:"references"`
	NotFound   bool                        `json:"not_found"`
}

// Handler serves the question answering endpoints.
type Handler struct {
	ask    driving.AskService
	logger *zap.Logger
}

// NewHandler creates a handler backed by the ask service.
func NewHandler(ask driving.AskService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ask: ask, logger: logger}
}

// HandleAsk handles POST /ask.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := ValidateStruct(&req); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			_ = WriteBadRequest(w, verr.Message, verr.Fields)
			return
		}
		_ = WriteBadRequest(w, err.Error(), nil)
		return
	}

	answer, err := h.ask.Ask(r.Context(), req.Question)
	if err != nil {
		h.handleAskError(w, requestID, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, AskResponse{
		Answer:     answer.Text,
		References: answer.References,
		NotFound:   answer.NotFound,
	}); err != nil {
		h.logger.Error("failed to write ask response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

func (h *Handler) handleAskError(w http.ResponseWriter, requestID string, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		_ = WriteBadRequest(w, err.Error(), nil)
		return
	}
	h.logger.Error("ask failed",
		zap.String("request_id", requestID),
		zap.Error(err))
	_ = WriteInternalServerError(w, err.Error())
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"regulations": len(h.ask.Regulations()),
	})
}
