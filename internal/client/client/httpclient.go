package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DAC098/tj2/internal/client/models"
	"github.com/DAC098/tj2/internal/common"
)

// refreshLeeway is how close to expiry the access token may get before the
// client refreshes it proactively instead of waiting for a 401.
const refreshLeeway = 30 * time.Second

// HTTPClient implements Client against the journal server's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onTokens     func(access, refresh string)
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTokens seeds a previously persisted session.
func WithTokens(access, refresh string) Option {
	return func(c *HTTPClient) {
		c.accessToken = access
		c.refreshToken = refresh
	}
}

// WithTokenListener registers a callback fired whenever the token pair
// changes (login or refresh), so the session can be persisted.
func WithTokenListener(fn func(access, refresh string)) Option {
	return func(c *HTTPClient) { c.onTokens = fn }
}

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// NewHTTPClient returns a client for the server at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type apiError struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	body, err := json.Marshal(credentialsRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/auth/register", "application/json", body, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(credentialsRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	var pair tokenPair
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "application/json", body, &pair); err != nil {
		return err
	}
	c.setTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/ping", "", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

type saveEntryRequest struct {
	Id           string               `json:"id"`
	Title        string               `json:"title"`
	Contents     string               `json:"contents"`
	Date         time.Time            `json:"date"`
	Tags         []models.Tag         `json:"tags,omitempty"`
	CustomFields []models.CustomField `json:"custom_fields,omitempty"`
	Attached     []AttachedFile       `json:"attached,omitempty"`
}

func (c *HTTPClient) SaveEntry(ctx context.Context, entry *models.Entry, attached []AttachedFile) (*SaveEntryResult, error) {
	body, err := json.Marshal(saveEntryRequest{
		Id:           entry.Id,
		Title:        entry.Title,
		Contents:     entry.Contents,
		Date:         entry.Date,
		Tags:         entry.Tags,
		CustomFields: entry.CustomFields,
		Attached:     attached,
	})
	if err != nil {
		return nil, err
	}

	var result SaveEntryResult
	if err := c.do(ctx, http.MethodPost, "/api/entries", "application/json", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UploadFile(ctx context.Context, entryID, fileID, mime string, payload []byte) (models.ServerFile, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	path := fmt.Sprintf("/api/entries/%s/files/%s", entryID, fileID)

	var file models.ServerFile
	if err := c.do(ctx, http.MethodPut, path, mime, payload, &file); err != nil {
		return models.ServerFile{}, err
	}
	return file, nil
}

// FileURL asks the download endpoint for its redirect target without
// following it; the Location header carries the presigned object URL.
func (c *HTTPClient) FileURL(ctx context.Context, entryID, fileID string) (string, error) {
	path := fmt.Sprintf("/api/entries/%s/files/%s", entryID, fileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	noRedirect := *c.http
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusFound, http.StatusTemporaryRedirect:
		location := resp.Header.Get("Location")
		if location == "" {
			return "", fmt.Errorf("download redirect without location")
		}
		return location, nil
	default:
		data, _ := io.ReadAll(resp.Body)
		return "", mapStatus(resp.StatusCode, data)
	}
}

// do sends one authenticated request and decodes a JSON response into out
// (out may be nil). An expired-token 401 triggers a single refresh-and-retry.
func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	status, data, err := c.send(ctx, method, path, contentType, body, c.token(ctx))
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.expiredToken(data) {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		status, data, err = c.send(ctx, method, path, contentType, body, c.token(ctx))
		if err != nil {
			return err
		}
	}

	if status >= 200 && status < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
	return mapStatus(status, data)
}

func (c *HTTPClient) send(ctx context.Context, method, path, contentType string, body []byte, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func mapStatus(status int, data []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(data, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorConflict
	case http.StatusBadRequest:
		if msg != "" {
			return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
		}
		return common.ErrorValidation
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d: %s", status, msg)
	}
}

// expiredToken reports whether a 401 body names an expired access token,
// the one unauthorized case a refresh can recover from.
func (c *HTTPClient) expiredToken(data []byte) bool {
	c.mu.Lock()
	hasRefresh := c.refreshToken != ""
	c.mu.Unlock()
	if !hasRefresh {
		return false
	}

	var apiErr apiError
	_ = json.Unmarshal(data, &apiErr)
	return apiErr.Error == common.ErrTokenExpired.Error()
}

// token returns the current access token, refreshing first when it is
// about to expire and a refresh token is on hand.
func (c *HTTPClient) token(ctx context.Context) string {
	c.mu.Lock()
	access := c.accessToken
	hasRefresh := c.refreshToken != ""
	c.mu.Unlock()

	if access != "" && hasRefresh && expiringSoon(access) {
		if err := c.refresh(ctx); err == nil {
			c.mu.Lock()
			access = c.accessToken
			c.mu.Unlock()
		}
	}
	return access
}

// expiringSoon inspects the token's exp claim without verifying the
// signature; verification is the server's job.
func expiringSoon(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < refreshLeeway
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return ErrUnauthorized
	}

	body, err := json.Marshal(map[string]string{"refresh_token": refresh})
	if err != nil {
		return err
	}

	status, data, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", "application/json", body, "")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return ErrUnauthorized
	}

	var pair tokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	c.setTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	fn := c.onTokens
	c.mu.Unlock()

	if fn != nil {
		fn(access, refresh)
	}
}
