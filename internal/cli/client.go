package cli

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
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/login", "", "", map[string]any{
		"password": password,
	}, &out, "")
	return out.Token, err
}

func (c *Client) Account(ctx context.Context, asUser string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/account", "", asUser, nil, &out, "")
	return out, err
}

func (c *Client) Statement(ctx context.Context, asUser string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/bank/statement", "", asUser, nil, &out, "")
	return out, err
}

func (c *Client) UserStats(ctx context.Context, asUser string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stats/me", "", asUser, nil, &out, "")
	return out, err
}

func (c *Client) ServerStats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stats/server", "", "", nil, &out, "")
	return out, err
}

func (c *Client) RichList(ctx context.Context, limit int) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/leaderboard/rich?limit=%d", limit), "", "", nil, &out, "")
	return out, err
}

func (c *Client) ListStocks(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stocks", "", "", nil, &out, "")
	return out, err
}

func (c *Client) StockHistory(ctx context.Context, symbol string, limit int) (map[string]any, error) {
	path := fmt.Sprintf("/v1/stocks/%s/history?limit=%d", url.PathEscape(symbol), limit)
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, "", "", nil, &out, "")
	return out, err
}

func (c *Client) Grant(ctx context.Context, token, targetUser string, amount int64, reason string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/admin/grant", token, "", map[string]any{
		"user_id": targetUser,
		"amount":  amount,
		"reason":  reason,
	}, &out, "")
	return out, err
}

func (c *Client) Release(ctx context.Context, token, targetUser string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/admin/release", token, "", map[string]any{
		"user_id": targetUser,
	}, &out, "")
	return out, err
}

func (c *Client) Do(ctx context.Context, method, path, token, asUser string, body map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, method, path, token, asUser, body, &out, idem)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, token, asUser string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if asUser != "" {
		req.Header.Set("X-User-ID", asUser)
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
