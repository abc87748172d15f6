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
	"attestry/internal/registry/models"
	"attestry/internal/transport/http/shared"
	dErrors "attestry/pkg/domainerrors"
)

// Service defines the interface for registry operations.
type Service interface {
	CreateOrUpdate(ctx context.Context, caller models.AccountID, name, email, documentHash []byte) error
	Get(ctx context.Context, accountID models.AccountID) (models.Identity, error)
	Verify(ctx context.Context, caller, target models.AccountID) error
	IsVerified(ctx context.Context, validator, owner models.AccountID) (bool, error)
	Revoke(ctx context.Context, caller models.AccountID) error
}

// Handler handles identity registry endpoints. It delegates to the service
// without embedding business logic so transport concerns remain isolated.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new registry Handler.
func New(registry Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		registry:  registry,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	registryRouter := chi.NewRouter()
	registryRouter.Use(middleware.Recovery(h.logger))
	registryRouter.Use(middleware.RequestID)
	registryRouter.Use(middleware.Logger(h.logger))
	registryRouter.Use(middleware.Timeout(30 * time.Second))
	registryRouter.Use(middleware.ContentTypeJSON)
	registryRouter.Use(middleware.Latency(h.metrics))
	registryRouter.Use(middleware.RequireAuth(h.validator, h.logger))
	registryRouter.Post("/identity", h.handleCreateOrUpdate)
	registryRouter.Post("/identity/revoke", h.handleRevoke)
	registryRouter.Get("/identity/{accountID}", h.handleGet)
	registryRouter.Post("/identity/{accountID}/verify", h.handleVerify)
	registryRouter.Get("/identity/{accountID}/verifications/{validatorID}", h.handleIsVerified)

	r.Mount("/registry", registryRouter)
}

type identityRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	DocumentHash string `json:"document_hash"`
}

type identityResponse struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	DocumentHash string `json:"document_hash"`
	Revoked      bool   `json:"revoked"`
}

type verificationResponse struct {
	Validator string `json:"validator"`
	Owner     string `json:"owner"`
	Verified  bool   `json:"verified"`
}

// caller extracts the authenticated account from the request context. The
// auth middleware guarantees it is set; an empty value is a wiring bug.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (models.AccountID, bool) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	if accountID == "" {
		h.logger.ErrorContext(ctx, "account id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return models.AccountID(accountID), true
}

func (h *Handler) handleCreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid identity request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	err := h.registry.CreateOrUpdate(ctx, caller, []byte(req.Name), []byte(req.Email), []byte(req.DocumentHash))
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "identity rejected",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to store identity",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to store identity"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	accountID := models.AccountID(chi.URLParam(r, "accountID"))

	identity, err := h.registry.Get(ctx, accountID)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load identity",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, identityResponse{
		Name:         string(identity.Name),
		Email:        string(identity.Email),
		DocumentHash: string(identity.DocumentHash),
		Revoked:      identity.Revoked,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	target := models.AccountID(chi.URLParam(r, "accountID"))

	if err := h.registry.Verify(ctx, caller, target); err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) || dErrors.Is(err, dErrors.CodeConflict) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify identity",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to verify identity"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleIsVerified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	owner := models.AccountID(chi.URLParam(r, "accountID"))
	validator := models.AccountID(chi.URLParam(r, "validatorID"))

	verified, err := h.registry.IsVerified(ctx, validator, owner)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to check verification",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to check verification"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, verificationResponse{
		Validator: string(validator),
		Owner:     string(owner),
		Verified:  verified,
	})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.registry.Revoke(ctx, caller); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke identity",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to revoke identity"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
