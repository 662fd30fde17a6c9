package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/config"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

const maxResponseBody = 32 << 20

// Client calls the admin API on behalf of the console. It performs a single attempt per call.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// New constructs a Client from console configuration.
func New(cfg config.ConsoleConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Message string           `json:"message"`
	Error   *appErrors.Error `json:"error"`
}

// ListAccounts fetches every account.
func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.do(ctx, http.MethodGet, "/admin/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListInvitations fetches every invitation.
func (c *Client) ListInvitations(ctx context.Context) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := c.do(ctx, http.MethodGet, "/admin/invitations", nil, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// ListPrograms fetches the program selector choices.
func (c *Client) ListPrograms(ctx context.Context) ([]models.ProgramChoice, error) {
	var programs []models.ProgramChoice
	if err := c.do(ctx, http.MethodGet, "/admin/programs", nil, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// CreateInvitation submits the invite action.
func (c *Client) CreateInvitation(ctx context.Context, req models.CreateInvitationRequest) (*models.CreateInvitationResult, error) {
	var result models.CreateInvitationResult
	if err := c.do(ctx, http.MethodPost, "/admin/invitations", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResendInvitation re-delivers a pending invitation.
func (c *Client) ResendInvitation(ctx context.Context, id string) (*models.ResendInvitationResult, error) {
	var result models.ResendInvitationResult
	if err := c.do(ctx, http.MethodPost, "/admin/invitations/"+url.PathEscape(id)+"/resend", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelInvitation cancels a pending invitation.
func (c *Client) CancelInvitation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/admin/invitations/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// UpdateAccount edits an account.
func (c *Client) UpdateAccount(ctx context.Context, id string, req models.UpdateAccountRequest) error {
	return c.do(ctx, http.MethodPut, "/admin/accounts/"+url.PathEscape(id), req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("admin API request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("admin API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var env envelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest || (decodeErr == nil && !env.Success) {
		return responseError(resp.StatusCode, env, decodeErr)
	}
	if decodeErr != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, decodeErr)
	}
	if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

// responseError returns a typed error only when the server supplied a message; otherwise the
// error is untyped and callers fall back to their own wording.
func responseError(status int, env envelope, decodeErr error) error {
	if decodeErr == nil && env.Error != nil && env.Error.Message != "" {
		remote := *env.Error
		if remote.Status == 0 {
			remote.Status = status
		}
		return &remote
	}
	if decodeErr == nil && env.Message != "" {
		return appErrors.New(appErrors.ErrRemote.Code, status, env.Message)
	}
	if len(http.StatusText(status)) > 0 {
		return fmt.Errorf("admin API responded %d %s", status, http.StatusText(status))
	}
	return fmt.Errorf("admin API responded %d", status)
}
