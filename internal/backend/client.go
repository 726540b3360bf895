package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrUnreachable covers transport-level failures talking to the backend.
	ErrUnreachable = errors.New("backend unreachable")
	// ErrRejected means the backend answered with a non-200 status.
	ErrRejected = errors.New("binding rejected by backend")
)

// Client talks to the Ravell backend.
type Client struct {
	httpClient *http.Client
	bindURL    string
}

func NewClient(bindURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		bindURL:    bindURL,
	}
}

type bindRequest struct {
	UserID int64 `json:"user_id"`
	ChatID int64 `json:"chat_id"`
}

// NotifyBind tells the backend that userID is now reachable at chatID.
func (c *Client) NotifyBind(ctx context.Context, userID, chatID int64) error {
	body, err := json.Marshal(bindRequest{UserID: userID, ChatID: chatID})
	if err != nil {
		return fmt.Errorf("marshal bind request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bindURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build bind request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
