package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"attestry/internal/platform/middleware"
	"attestry/internal/registry/handler/mocks"
	"attestry/internal/registry/models"
	dErrors "attestry/pkg/domainerrors"
)

//go:generate mockgen -source=handler.go -destination=mocks/registry-mocks.go -package=mocks Service
type RegistryHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *RegistryHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestRegistryHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistryHandlerSuite))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger, nil, nil)
	return handler, mockService
}

// authed injects the authenticated account the way RequireAuth would.
func authed(req *http.Request, accountID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyAccountID, accountID)
	return req.WithContext(ctx)
}

func (s *RegistryHandlerSuite) TestHandleCreateOrUpdate() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().CreateOrUpdate(
		gomock.Any(),
		models.AccountID("acct-alice"),
		[]byte("Alice"),
		[]byte("a@x.com"),
		[]byte("deadbeef"),
	).Return(nil)

	body, err := json.Marshal(identityRequest{Name: "Alice", Email: "a@x.com", DocumentHash: "deadbeef"})
	require.NoError(s.T(), err)

	req := authed(httptest.NewRequest(http.MethodPost, "/registry/identity", bytes.NewReader(body)), "acct-alice")
	w := httptest.NewRecorder()
	handler.handleCreateOrUpdate(w, req)

	assert.Equal(s.T(), http.StatusNoContent, w.Code)
}

func (s *RegistryHandlerSuite) TestHandleCreateOrUpdateFieldTooLong() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().CreateOrUpdate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dErrors.Wrap(models.ErrNameTooLong, dErrors.CodeBadRequest, "invalid identity fields"))

	body, err := json.Marshal(identityRequest{Name: "way too long", Email: "a@x.com", DocumentHash: "deadbeef"})
	require.NoError(s.T(), err)

	req := authed(httptest.NewRequest(http.MethodPost, "/registry/identity", bytes.NewReader(body)), "acct-alice")
	w := httptest.NewRecorder()
	handler.handleCreateOrUpdate(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "bad_request", resp["error"])
}

func (s *RegistryHandlerSuite) TestHandleCreateOrUpdateBadBody() {
	handler, _ := newTestHandler(s.T())

	req := authed(httptest.NewRequest(http.MethodPost, "/registry/identity", bytes.NewReader([]byte("{not json"))), "acct-alice")
	w := httptest.NewRecorder()
	handler.handleCreateOrUpdate(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *RegistryHandlerSuite) TestHandleCreateOrUpdateMissingAuthContext() {
	handler, _ := newTestHandler(s.T())

	req := httptest.NewRequest(http.MethodPost, "/registry/identity", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	handler.handleCreateOrUpdate(w, req)

	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
}

// routed dispatches through a chi router so URL parameters resolve.
func routed(handler *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/registry/identity/{accountID}", handler.handleGet)
	r.Post("/registry/identity/{accountID}/verify", handler.handleVerify)
	r.Get("/registry/identity/{accountID}/verifications/{validatorID}", handler.handleIsVerified)
	return r
}

func (s *RegistryHandlerSuite) TestHandleGet() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().Get(gomock.Any(), models.AccountID("acct-alice")).Return(models.Identity{
		Name:         []byte("Alice"),
		Email:        []byte("a@x.com"),
		DocumentHash: []byte("deadbeef"),
		Revoked:      true,
	}, nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/registry/identity/acct-alice", nil), "acct-bob")
	w := httptest.NewRecorder()
	routed(handler).ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp identityResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "Alice", resp.Name)
	assert.Equal(s.T(), "a@x.com", resp.Email)
	assert.Equal(s.T(), "deadbeef", resp.DocumentHash)
	assert.True(s.T(), resp.Revoked)
}

func (s *RegistryHandlerSuite) TestHandleGetNotFound() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().Get(gomock.Any(), models.AccountID("acct-ghost")).
		Return(models.Identity{}, dErrors.Wrap(models.ErrIdentityNotFound, dErrors.CodeNotFound, "identity not found"))

	req := authed(httptest.NewRequest(http.MethodGet, "/registry/identity/acct-ghost", nil), "acct-bob")
	w := httptest.NewRecorder()
	routed(handler).ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *RegistryHandlerSuite) TestHandleVerify() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().Verify(gomock.Any(), models.AccountID("acct-bob"), models.AccountID("acct-alice")).Return(nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/registry/identity/acct-alice/verify", nil), "acct-bob")
	w := httptest.NewRecorder()
	routed(handler).ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNoContent, w.Code)
}

func (s *RegistryHandlerSuite) TestHandleVerifyAlreadyVerified() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().Verify(gomock.Any(), models.AccountID("acct-bob"), models.AccountID("acct-alice")).
		Return(dErrors.Wrap(models.ErrAlreadyVerified, dErrors.CodeConflict, "already verified"))

	req := authed(httptest.NewRequest(http.MethodPost, "/registry/identity/acct-alice/verify", nil), "acct-bob")
	w := httptest.NewRecorder()
	routed(handler).ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusConflict, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "conflict", resp["error"])
}

func (s *RegistryHandlerSuite) TestHandleIsVerified() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().IsVerified(gomock.Any(), models.AccountID("acct-bob"), models.AccountID("acct-alice")).Return(true, nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/registry/identity/acct-alice/verifications/acct-bob", nil), "acct-carol")
	w := httptest.NewRecorder()
	routed(handler).ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp verificationResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(s.T(), resp.Verified)
	assert.Equal(s.T(), "acct-bob", resp.Validator)
	assert.Equal(s.T(), "acct-alice", resp.Owner)
}

func (s *RegistryHandlerSuite) TestHandleRevoke() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().Revoke(gomock.Any(), models.AccountID("acct-alice")).Return(nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/registry/identity/revoke", nil), "acct-alice")
	w := httptest.NewRecorder()
	handler.handleRevoke(w, req)

	assert.Equal(s.T(), http.StatusNoContent, w.Code)
}
