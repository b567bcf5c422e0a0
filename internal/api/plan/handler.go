package plan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/pkg/logger"
	"github.com/24thNight/clarify-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase PlanUsecase
}

func NewHandler(usecase PlanUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// CreatePlan handles POST /plans
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreatePlan")

	var req entity.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	plan, err := h.usecase.CreatePlan(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, plan)
}

// ListPlans handles GET /plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListPlans")

	plans, err := h.usecase.ListPlans(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if plans == nil {
		plans = []entity.Plan{}
	}

	response.Success(w, plans)
}

// GetPlan handles GET /plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("plan_id", planID),
		zap.String("action", "GetPlan"),
	)

	plan, err := h.usecase.GetPlan(ctx, planID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, plan)
}

// UpdatePlan handles PATCH /plans/{id}
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("plan_id", planID),
		zap.String("action", "UpdatePlan"),
	)

	var req entity.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	plan, err := h.usecase.UpdatePlan(ctx, planID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, plan)
}

// DeletePlan handles DELETE /plans/{id}
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("plan_id", planID),
		zap.String("action", "DeletePlan"),
	)

	if err := h.usecase.DeletePlan(ctx, planID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// ExportPlan handles GET /plans/{id}/export?format=md|pdf|docx
func (h *Handler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("plan_id", planID),
		zap.String("action", "ExportPlan"),
	)

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	data, contentType, filename, err := h.usecase.ExportPlan(ctx, planID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Binary(w, contentType, filename, data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrPlanNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "plan not found", err)
	case errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
