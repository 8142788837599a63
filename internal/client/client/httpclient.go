package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/cloudsync"
	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/common"
)

const apiPrefix = "/api/v1"

type tokenPair struct {
	AccountID    string `json:"account_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type deviceRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPClient talks to the sync server over its JSON API. A request that
// comes back 401 with an expired access token triggers one token refresh
// and one retry; everything else maps to sentinel errors.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accountID    string
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTokens restores a persisted session.
func (c *HTTPClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

// Tokens returns the current session pair for persistence.
func (c *HTTPClient) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// AccountID returns the server-assigned account id of the current
// session, empty when not logged in.
func (c *HTTPClient) AccountID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountID
}

// Authenticated reports whether a session is present.
func (c *HTTPClient) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

func (c *HTTPClient) setSession(tokens tokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountID = tokens.AccountID
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	var tokens tokenPair
	err := c.doJSON(ctx, http.MethodPost, "/register", credentialsRequest{Username: username, Password: password}, &tokens, false)
	if err != nil {
		return err
	}
	c.setSession(tokens)
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	var tokens tokenPair
	err := c.doJSON(ctx, http.MethodPost, "/login", credentialsRequest{Username: username, Password: password}, &tokens, false)
	if err != nil {
		return err
	}
	c.setSession(tokens)
	return nil
}

func (c *HTTPClient) Logout() {
	c.setSession(tokenPair{})
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/ping", nil, nil, false)
}

func (c *HTTPClient) PushSnapshot(ctx context.Context, s cloudsync.Snapshot) error {
	return c.doJSON(ctx, http.MethodPut, "/snapshot", s, nil, true)
}

func (c *HTTPClient) PullSnapshot(ctx context.Context) (cloudsync.Snapshot, bool, error) {
	var s cloudsync.Snapshot
	err := c.doJSON(ctx, http.MethodGet, "/snapshot", nil, &s, true)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return cloudsync.Snapshot{}, false, nil
		}
		return cloudsync.Snapshot{}, false, err
	}
	return s, true, nil
}

func (c *HTTPClient) ListDevices(ctx context.Context) ([]models.Device, error) {
	var list []models.Device
	if err := c.doJSON(ctx, http.MethodGet, "/devices", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) RegisterDevice(ctx context.Context, id, name string) error {
	return c.doJSON(ctx, http.MethodPut, "/devices/"+url.PathEscape(id), deviceRequest{Name: name}, nil, true)
}

// doJSON performs one API call. When authed is set the bearer token is
// attached and an expired-token response is refreshed and retried once.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any, authed bool) error {
	resp, err := c.send(ctx, method, path, in, authed)
	if err != nil {
		return err
	}

	if authed && resp.StatusCode == http.StatusUnauthorized {
		apiErr := readError(resp)
		resp.Body.Close()
		if apiErr != common.ErrTokenExpired.Error() {
			return common.ErrorUnauthorized
		}
		if err := c.refresh(ctx); err != nil {
			return err
		}
		resp, err = c.send(ctx, method, path, in, authed)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, out)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, in any, authed bool) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		c.mu.Lock()
		token := c.accessToken
		c.mu.Unlock()
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSyncUnavailable, err)
	}
	return resp, nil
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return common.ErrorUnauthorized
	}

	resp, err := c.send(ctx, http.MethodPost, "/refresh", refreshRequest{RefreshToken: refresh}, false)
	if err != nil {
		return err
	}
	var tokens tokenPair
	if err := decodeResponse(resp, &tokens); err != nil {
		return err
	}
	c.setSession(tokens)
	return nil
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	default:
		return mapStatus(resp.StatusCode, readError(resp))
	}
}

func readError(resp *http.Response) string {
	var e errorResponse
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func mapStatus(code int, detail string) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return common.ErrorUnauthorized
	case code == http.StatusNotFound:
		return common.ErrorNotFound
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrValidation, detail)
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrValidation, detail)
	case code >= 500:
		return fmt.Errorf("%w: server returned %d", common.ErrSyncUnavailable, code)
	default:
		return fmt.Errorf("unexpected status %d: %s", code, detail)
	}
}
