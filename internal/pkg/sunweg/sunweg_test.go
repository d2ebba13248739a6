package sunweg

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anicoll/sunweg-integration/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeResponse struct {
	status  int
	fixture string
}

// fakeAPI serves fixtures per path. Each call to a path consumes the next
// response, the last one repeats.
type fakeAPI struct {
	t         *testing.T
	mu        sync.Mutex
	responses map[string][]fakeResponse
	calls     map[string]int
	requests  []*http.Request
	bodies    map[string][]byte
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	return &fakeAPI{
		t:         t,
		responses: map[string][]fakeResponse{},
		calls:     map[string]int{},
		bodies:    map[string][]byte{},
	}
}

func (f *fakeAPI) on(path string, status int, fixture string) *fakeAPI {
	f.responses[path] = append(f.responses[path], fakeResponse{status: status, fixture: fixture})
	return f
}

func (f *fakeAPI) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeAPI) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	body, _ := io.ReadAll(r.Body)
	f.bodies[path] = body
	f.requests = append(f.requests, r)

	responses, ok := f.responses[path]
	if !ok {
		f.t.Errorf("unexpected request to %s", path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	idx := f.calls[path]
	if idx >= len(responses) {
		idx = len(responses) - 1
	}
	f.calls[path]++

	res := responses[idx]
	w.WriteHeader(res.status)
	if res.fixture == "" {
		_, _ = w.Write([]byte(http.StatusText(res.status)))
		return
	}
	data, err := os.ReadFile(filepath.Join("testdata", res.fixture))
	if err != nil {
		f.t.Errorf("read fixture %s: %v", res.fixture, err)
		return
	}
	_, _ = w.Write(data)
}

func newTestService(t *testing.T, api *fakeAPI, username, password string) *service {
	t.Helper()
	// s.logger = zap.L() in New()
	restore := zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(restore)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	return New(&config.SunwegConfig{
		BaseURL:  srv.URL,
		Username: username,
		Password: password,
	})
}

func TestNew_Defaults(t *testing.T) {
	s := New(&config.SunwegConfig{})
	assert.Equal(t, DefaultURL, s.baseURL)
	assert.Equal(t, defaultTimeout, s.client.Timeout)
	assert.Empty(t, s.token)

	s = New(&config.SunwegConfig{BaseURL: "http://localhost:1234/v2", Token: "token", Timeout: time.Second})
	assert.Equal(t, "http://localhost:1234/v2/", s.baseURL)
	assert.Equal(t, time.Second, s.client.Timeout)
	assert.Equal(t, "token", s.token)
}

func TestAuthenticate_Success(t *testing.T) {
	api := newFakeAPI(t).on(loginPath, http.StatusOK, "auth_success_response.json")
	s := newTestService(t, api, "user@acme.com", "password")

	ok, err := s.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, s.token)

	req := api.lastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get(tokenHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(api.bodies[loginPath], &body))
	assert.Equal(t, map[string]any{"usuario": "user@acme.com", "senha": "password", "rememberMe": true}, body)

	exp, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), exp.UTC())
}

func TestAuthenticate_EmptyCredentials(t *testing.T) {
	api := newFakeAPI(t)
	s := newTestService(t, api, "", "")

	ok, err := s.Authenticate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, api.callCount(loginPath))

	s.SetCredentials("user@acme.com", "")
	ok, err = s.Authenticate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, api.callCount(loginPath))
}

func TestAuthenticate_Failed(t *testing.T) {
	api := newFakeAPI(t).on(loginPath, http.StatusOK, "auth_fail_response.json")
	s := newTestService(t, api, "user@acme.com", "wrong")

	ok, err := s.Authenticate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.token)
}

func TestAuthenticate_Error500(t *testing.T) {
	api := newFakeAPI(t).on(loginPath, http.StatusInternalServerError, "")
	s := newTestService(t, api, "user@acme.com", "password")

	ok, err := s.Authenticate(context.Background())
	assert.False(t, ok)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "500 Internal Server Error", apiErr.Error())
}

func TestSetCredentials(t *testing.T) {
	api := newFakeAPI(t).on(loginPath, http.StatusOK, "auth_success_response.json")
	s := newTestService(t, api, "user@acme.com", "password")

	s.SetCredentials("user1@acme.com", "password1")
	_, err := s.Authenticate(context.Background())
	require.NoError(t, err)

	var body loginRequest
	require.NoError(t, json.Unmarshal(api.bodies[loginPath], &body))
	assert.Equal(t, "user1@acme.com", body.Username)
	assert.Equal(t, "password1", body.Password)
}

func TestSetToken(t *testing.T) {
	api := newFakeAPI(t).
		on("viewresumov2", http.StatusOK, "plant_success_response.json")
	s := newTestService(t, api, "", "")

	_, err := s.GetPlant(context.Background(), 16925)
	require.NoError(t, err)
	assert.Empty(t, api.lastRequest().Header.Get(tokenHeader))

	s.SetToken("new_token")
	_, err = s.GetPlant(context.Background(), 16925)
	require.NoError(t, err)
	assert.Equal(t, "new_token", api.lastRequest().Header.Get(tokenHeader))
	assert.Equal(t, "application/json", api.lastRequest().Header.Get("Content-Type"))

	_, ok := s.TokenExpiry()
	assert.False(t, ok)
}

func TestRetry_ReauthenticationErrorPropagates(t *testing.T) {
	api := newFakeAPI(t).
		on("getpaineloperacao", http.StatusUnauthorized, "").
		on(loginPath, http.StatusInternalServerError, "")
	s := newTestService(t, api, "user@acme.com", "password")

	plants, err := s.ListPlants(context.Background())
	assert.Nil(t, plants)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, api.callCount("getpaineloperacao"))
}

func TestRetry_RejectedLoginStillRetriesOnce(t *testing.T) {
	api := newFakeAPI(t).
		on("getpaineloperacao", http.StatusUnauthorized, "").
		on(loginPath, http.StatusOK, "auth_fail_response.json")
	s := newTestService(t, api, "user@acme.com", "wrong")

	plants, err := s.ListPlants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plants)
	assert.Equal(t, 2, api.callCount("getpaineloperacao"))
	assert.Equal(t, 1, api.callCount(loginPath))
}

func TestRetry_NonAuthErrorsAreNotRetried(t *testing.T) {
	api := newFakeAPI(t).
		on("viewresumov2", http.StatusInternalServerError, "").
		on(loginPath, http.StatusOK, "auth_success_response.json")
	s := newTestService(t, api, "user@acme.com", "password")

	plant, err := s.GetPlant(context.Background(), 16925)
	assert.Nil(t, plant)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, api.callCount("viewresumov2"))
	assert.Zero(t, api.callCount(loginPath))
}
