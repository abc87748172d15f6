package httptransport_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	counterhandler "attestry/internal/counter/handler"
	counterservice "attestry/internal/counter/service"
	counterstore "attestry/internal/counter/store"
	"attestry/internal/events"
	"attestry/internal/jwtauth"
	"attestry/internal/platform/config"
	"attestry/internal/platform/metrics"
	registryhandler "attestry/internal/registry/handler"
	registryservice "attestry/internal/registry/service"
	identitystore "attestry/internal/registry/store/identity"
	verificationstore "attestry/internal/registry/store/verification"
	httptransport "attestry/internal/transport/http"
)

// ServerFlowSuite drives the fully assembled router over in-memory stores,
// the same wiring as cmd/server minus the external backends.
type ServerFlowSuite struct {
	suite.Suite
	server *httptest.Server
	tokens *jwtauth.Service
	events *events.InMemoryStore
}

func TestServerFlowSuite(t *testing.T) {
	suite.Run(t, new(ServerFlowSuite))
}

func (s *ServerFlowSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewForTest()

	s.events = events.NewInMemoryStore()
	publisher := events.NewPublisher(s.events)
	s.tokens = jwtauth.NewService("test-signing-key", "attestry", "attestry-api")

	limits := config.Limits{MaxNameLength: 64, MaxEmailLength: 128, MaxDocHashLength: 64}
	registry := registryservice.NewService(
		identitystore.New(), verificationstore.New(), publisher, limits, m,
	)
	counter := counterservice.NewService(
		counterstore.New(), publisher, config.Counter{MaxValue: 100}, m,
	)

	router := httptransport.NewRouter(
		registryhandler.New(registry, log, m, s.tokens),
		counterhandler.New(counter, log, m, s.tokens),
	)
	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)
}

func (s *ServerFlowSuite) token(accountID string, admin bool) string {
	token, err := s.tokens.GenerateAccessToken(accountID, admin, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *ServerFlowSuite) do(method, path, token string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *ServerFlowSuite) decode(resp *http.Response, out any) {
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

func (s *ServerFlowSuite) TestRejectsMissingToken() {
	resp := s.do(http.MethodPost, "/registry/identity", "", map[string]string{"name": "Alice"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/counter", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *ServerFlowSuite) TestHealthzIsOpen() {
	resp := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerFlowSuite) TestIdentityLifecycle() {
	alice := s.token("acct-alice", false)
	bob := s.token("acct-bob", false)

	resp := s.do(http.MethodPost, "/registry/identity", alice, map[string]string{
		"name": "Alice", "email": "alice@example.com", "document_hash": "deadbeef",
	})
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/registry/identity/acct-alice", bob, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var identity struct {
		Name    string `json:"name"`
		Revoked bool   `json:"revoked"`
	}
	s.decode(resp, &identity)
	s.Equal("Alice", identity.Name)
	s.False(identity.Revoked)

	// bob attests alice, once
	resp = s.do(http.MethodPost, "/registry/identity/acct-alice/verify", bob, nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)
	resp = s.do(http.MethodPost, "/registry/identity/acct-alice/verify", bob, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/registry/identity/acct-ghost/verify", bob, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPost, "/registry/identity/revoke", alice, nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/registry/identity/acct-alice", alice, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &identity)
	s.True(identity.Revoked)

	// revocation leaves the attestation in place
	resp = s.do(http.MethodGet, "/registry/identity/acct-alice/verifications/acct-bob", alice, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var verification struct {
		Verified bool `json:"verified"`
	}
	s.decode(resp, &verification)
	s.True(verification.Verified)
}

func (s *ServerFlowSuite) TestFieldLimitIsBadRequest() {
	alice := s.token("acct-alice", false)
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	resp := s.do(http.MethodPost, "/registry/identity", alice, map[string]string{
		"name": string(long), "email": "a@x.com", "document_hash": "beef",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerFlowSuite) TestCounterFlow() {
	user := s.token("acct-user", false)
	admin := s.token("acct-admin", true)

	resp := s.do(http.MethodPut, "/counter", user, map[string]uint32{"value": 10})
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodPut, "/counter", admin, map[string]uint32{"value": 10})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var value struct {
		Value uint32 `json:"value"`
	}
	resp = s.do(http.MethodPost, "/counter/increment", user, map[string]uint32{"amount": 5})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &value)
	s.Equal(uint32(15), value.Value)

	resp = s.do(http.MethodPost, "/counter/decrement", user, map[string]uint32{"amount": 3})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &value)
	s.Equal(uint32(12), value.Value)

	// past the configured max
	resp = s.do(http.MethodPost, "/counter/increment", user, map[string]uint32{"amount": 89})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodGet, "/counter", user, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &value)
	s.Equal(uint32(12), value.Value)

	var interactions struct {
		Interactions uint32 `json:"interactions"`
	}
	resp = s.do(http.MethodGet, "/counter/interactions/acct-user", user, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &interactions)
	s.Equal(uint32(2), interactions.Interactions)
}
