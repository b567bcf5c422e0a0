package clarification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/pkg/logger"
	"github.com/24thNight/clarify-backend/internal/stream"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ClarificationUsecase
}

func NewHandler(usecase ClarificationUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// StartSession handles POST /clarification/sessions - start a new session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	var req entity.StartSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	session, err := h.usecase.StartSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, entity.StartSessionResponse{
		SessionID: session.ID,
	})
}

// GetSession handles GET /clarification/sessions/{id} - get session state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSession"),
	)

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// StreamQuestions handles GET /clarification/sessions/{id}/stream - SSE
// stream of question events. Replays the full session history first, then
// follows live until the stream ends or the client disconnects.
func (h *Handler) StreamQuestions(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "StreamQuestions"),
	)

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(ctx, w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	events, cancel, err := h.usecase.SubscribeStream(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctxzap.Info(ctx, "stream subscriber connected")

	for {
		select {
		case ev, open := <-events:
			if !open {
				ctxzap.Info(ctx, "stream finished")
				return
			}
			if err := stream.WriteEvent(w, flusher, ev); err != nil {
				ctxzap.Warn(ctx, "stream write failed", zap.Error(err))
				return
			}
		case <-ctx.Done():
			ctxzap.Info(ctx, "stream subscriber disconnected")
			return
		}
	}
}

// SubmitAnswer handles POST /clarification/sessions/{id}/answers
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "SubmitAnswer"),
	)

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if _, err := h.usecase.SubmitAnswer(ctx, sessionID, &req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.SubmitAnswerResponse{Success: true})
}

// CompleteSession handles POST /clarification/sessions/{id}/complete -
// finalize the session and materialize the plan
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "CompleteSession"),
	)

	plan, err := h.usecase.CompleteSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.CompleteSessionResponse{PlanID: plan.ID})
}

// AbandonSession handles DELETE /clarification/sessions/{id}
func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "AbandonSession"),
	)

	if err := h.usecase.AbandonSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound) || errors.Is(err, entity.ErrQuestionNotFound) || errors.Is(err, entity.ErrPlanNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrSessionCompleted) || errors.Is(err, entity.ErrSessionFailed) || errors.Is(err, entity.ErrSessionNotFinishable):
		h.respondError(ctx, w, http.StatusConflict, "invalid session state", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
