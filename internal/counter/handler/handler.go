package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"attestry/internal/platform/metrics"
	"attestry/internal/platform/middleware"
	registrymodels "attestry/internal/registry/models"
	"attestry/internal/transport/http/shared"
	dErrors "attestry/pkg/domainerrors"
)

// Service defines the interface for counter operations.
type Service interface {
	Value(ctx context.Context) (uint32, error)
	SetValue(ctx context.Context, caller registrymodels.AccountID, value uint32) error
	Increment(ctx context.Context, caller registrymodels.AccountID, amount uint32) (uint32, error)
	Decrement(ctx context.Context, caller registrymodels.AccountID, amount uint32) (uint32, error)
	Interactions(ctx context.Context, accountID registrymodels.AccountID) (uint32, error)
}

// Handler handles counter endpoints.
type Handler struct {
	logger    *slog.Logger
	counter   Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(counter Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		counter:   counter,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the counter routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	counterRouter := chi.NewRouter()
	counterRouter.Use(middleware.Recovery(h.logger))
	counterRouter.Use(middleware.RequestID)
	counterRouter.Use(middleware.Logger(h.logger))
	counterRouter.Use(middleware.Timeout(30 * time.Second))
	counterRouter.Use(middleware.ContentTypeJSON)
	counterRouter.Use(middleware.Latency(h.metrics))
	counterRouter.Use(middleware.RequireAuth(h.validator, h.logger))
	counterRouter.Get("/", h.handleValue)
	counterRouter.Put("/", h.handleSetValue)
	counterRouter.Post("/increment", h.handleIncrement)
	counterRouter.Post("/decrement", h.handleDecrement)
	counterRouter.Get("/interactions/{accountID}", h.handleInteractions)

	r.Mount("/counter", counterRouter)
}

type setValueRequest struct {
	Value uint32 `json:"value"`
}

type amountRequest struct {
	Amount uint32 `json:"amount"`
}

type valueResponse struct {
	Value uint32 `json:"value"`
}

type interactionsResponse struct {
	AccountID    string `json:"account_id"`
	Interactions uint32 `json:"interactions"`
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (registrymodels.AccountID, bool) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	if accountID == "" {
		h.logger.ErrorContext(ctx, "account id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return registrymodels.AccountID(accountID), true
}

func (h *Handler) handleValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}

	value, err := h.counter.Value(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read counter",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to read counter"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, valueResponse{Value: value})
}

// handleSetValue overwrites the counter. Admin only: the set operation is the
// root-origin path, unlike increment/decrement which any account may call.
func (h *Handler) handleSetValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if !middleware.IsAdmin(ctx) {
		h.logger.WarnContext(ctx, "non-admin attempted counter set",
			"request_id", middleware.GetRequestID(ctx),
			"account_id", string(caller),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin required"))
		return
	}

	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.counter.SetValue(ctx, caller, req.Value); err != nil {
		h.writeServiceError(w, r, err, "failed to set counter")
		return
	}
	shared.WriteJSON(w, http.StatusOK, valueResponse{Value: req.Value})
}

func (h *Handler) handleIncrement(w http.ResponseWriter, r *http.Request) {
	h.handleDelta(w, r, h.counter.Increment)
}

func (h *Handler) handleDecrement(w http.ResponseWriter, r *http.Request) {
	h.handleDelta(w, r, h.counter.Decrement)
}

func (h *Handler) handleDelta(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, caller registrymodels.AccountID, amount uint32) (uint32, error),
) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	value, err := op(ctx, caller, req.Amount)
	if err != nil {
		h.writeServiceError(w, r, err, "counter operation failed")
		return
	}
	shared.WriteJSON(w, http.StatusOK, valueResponse{Value: value})
}

func (h *Handler) handleInteractions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	accountID := registrymodels.AccountID(chi.URLParam(r, "accountID"))

	count, err := h.counter.Interactions(ctx, accountID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to read interactions")
		return
	}
	shared.WriteJSON(w, http.StatusOK, interactionsResponse{
		AccountID:    string(accountID),
		Interactions: count,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	ctx := r.Context()
	if dErrors.Is(err, dErrors.CodeBadRequest) {
		shared.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
