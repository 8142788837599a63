package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/logging"
	"github.com/dmitrijs2005/alarmify/internal/server/auth"
	"github.com/dmitrijs2005/alarmify/internal/server/models"
	"github.com/dmitrijs2005/alarmify/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeUsers struct {
	registerErr error
	loginErr    error
	refreshErr  error
	lastRefresh string
}

func (f *fakeUsers) pair() *services.TokenPair {
	return &services.TokenPair{AccountID: "u1", AccessToken: "at", RefreshToken: "rt"}
}

func (f *fakeUsers) Register(ctx context.Context, u, p string) (*services.TokenPair, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.pair(), nil
}

func (f *fakeUsers) Login(ctx context.Context, u, p string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.pair(), nil
}

func (f *fakeUsers) RefreshToken(ctx context.Context, token string) (*services.TokenPair, error) {
	f.lastRefresh = token
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.pair(), nil
}

type fakeSnapshots struct {
	pushErr     error
	pushedBy    string
	pushedBody  []byte
	pullErr     error
	pullPayload []byte
}

func (f *fakeSnapshots) Push(ctx context.Context, userID string, payload []byte) (*models.SnapshotMeta, error) {
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushedBy = userID
	f.pushedBody = payload
	return &models.SnapshotMeta{UserID: userID, DeviceID: "dev-1", Checksum: "abc", AlarmCount: 1}, nil
}

func (f *fakeSnapshots) Pull(ctx context.Context, userID string) ([]byte, *models.SnapshotMeta, error) {
	if f.pullErr != nil {
		return nil, nil, f.pullErr
	}
	return f.pullPayload, &models.SnapshotMeta{UserID: userID}, nil
}

type fakeDevices struct {
	listOut    []models.Device
	listErr    error
	registered []models.Device
}

func (f *fakeDevices) Register(ctx context.Context, userID, deviceID, name string) (*models.Device, error) {
	d := models.Device{ID: deviceID, UserID: userID, Name: name}
	f.registered = append(f.registered, d)
	return &d, nil
}

func (f *fakeDevices) List(ctx context.Context, userID string) ([]models.Device, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func newTestServer(t *testing.T, u *fakeUsers, s *fakeSnapshots, d *fakeDevices) *httptest.Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewHandler(u, s, d, testSecret, logger)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func validToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e.Error
}

func TestPing(t *testing.T) {
	srv := newTestServer(t, &fakeUsers{}, &fakeSnapshots{}, &fakeDevices{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	u := &fakeUsers{}
	srv := newTestServer(t, u, &fakeSnapshots{}, &fakeDevices{})

	for _, path := range []string{"/api/v1/register", "/api/v1/login"} {
		resp := doRequest(t, http.MethodPost, srv.URL+path, "",
			credentialsRequest{Username: "alice", Password: "p"})
		require.Equal(t, http.StatusOK, resp.StatusCode, path)

		var pair tokenPairResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
		assert.Equal(t, "u1", pair.AccountID)
		assert.Equal(t, "at", pair.AccessToken)
		assert.Equal(t, "rt", pair.RefreshToken)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	u := &fakeUsers{loginErr: common.ErrorUnauthorized}
	srv := newTestServer(t, u, &fakeSnapshots{}, &fakeDevices{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/login", "",
		credentialsRequest{Username: "alice", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, common.ErrorUnauthorized.Error(), decodeError(t, resp))
}

func TestRegister_Duplicate(t *testing.T) {
	u := &fakeUsers{registerErr: common.ErrValidation}
	srv := newTestServer(t, u, &fakeSnapshots{}, &fakeDevices{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/register", "",
		credentialsRequest{Username: "alice", Password: "p"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefresh(t *testing.T) {
	u := &fakeUsers{}
	srv := newTestServer(t, u, &fakeSnapshots{}, &fakeDevices{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/refresh", "",
		refreshRequest{RefreshToken: "old-token"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "old-token", u.lastRefresh)
}

func TestRefresh_Expired(t *testing.T) {
	u := &fakeUsers{refreshErr: common.ErrRefreshTokenExpired}
	srv := newTestServer(t, u, &fakeSnapshots{}, &fakeDevices{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/refresh", "",
		refreshRequest{RefreshToken: "r"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, common.ErrRefreshTokenExpired.Error(), decodeError(t, resp))
}

func TestSnapshotRoutes_RequireAuth(t *testing.T) {
	srv := newTestServer(t, &fakeUsers{}, &fakeSnapshots{}, &fakeDevices{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/snapshot", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/snapshot", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_ExpiredTokenBody(t *testing.T) {
	srv := newTestServer(t, &fakeUsers{}, &fakeSnapshots{}, &fakeDevices{})

	expired, err := auth.GenerateToken("u1", testSecret, -time.Minute)
	require.NoError(t, err)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/snapshot", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	// exact body matters: the client uses it to decide to refresh
	assert.Equal(t, common.ErrTokenExpired.Error(), decodeError(t, resp))
}

func TestPushSnapshot(t *testing.T) {
	s := &fakeSnapshots{}
	srv := newTestServer(t, &fakeUsers{}, s, &fakeDevices{})

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/snapshot", validToken(t, "u1"),
		map[string]any{"device_id": "dev-1", "alarms": []any{}, "checksum": "abc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", s.pushedBy)
	assert.Contains(t, string(s.pushedBody), "dev-1")
}

func TestPushSnapshot_ChecksumMismatch(t *testing.T) {
	s := &fakeSnapshots{pushErr: common.ErrChecksumMismatch}
	srv := newTestServer(t, &fakeUsers{}, s, &fakeDevices{})

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/snapshot", validToken(t, "u1"),
		map[string]any{"device_id": "dev-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, common.ErrChecksumMismatch.Error(), decodeError(t, resp))
}

func TestPullSnapshot(t *testing.T) {
	s := &fakeSnapshots{pullPayload: []byte(`{"device_id":"dev-9"}`)}
	srv := newTestServer(t, &fakeUsers{}, s, &fakeDevices{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/snapshot", validToken(t, "u1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"device_id":"dev-9"}`, string(body))
}

func TestPullSnapshot_NotFound(t *testing.T) {
	s := &fakeSnapshots{pullErr: common.ErrorNotFound}
	srv := newTestServer(t, &fakeUsers{}, s, &fakeDevices{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/snapshot", validToken(t, "u1"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListDevices(t *testing.T) {
	d := &fakeDevices{listOut: []models.Device{
		{ID: "a", Name: "Bedroom", LastSync: time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)},
		{ID: "b", Name: "Kitchen"},
	}}
	srv := newTestServer(t, &fakeUsers{}, &fakeSnapshots{}, d)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/devices", validToken(t, "u1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []deviceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "2026-01-05T07:00:00Z", list[0].LastSync)
	assert.Empty(t, list[1].LastSync)
}

func TestRegisterDevice(t *testing.T) {
	d := &fakeDevices{}
	srv := newTestServer(t, &fakeUsers{}, &fakeSnapshots{}, d)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/devices/dev-7", validToken(t, "u1"),
		deviceRequest{Name: "Office"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, d.registered, 1)
	assert.Equal(t, "dev-7", d.registered[0].ID)
	assert.Equal(t, "Office", d.registered[0].Name)
	assert.Equal(t, "u1", d.registered[0].UserID)
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeUsers{}, &fakeSnapshots{}, &fakeDevices{})

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/login", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
