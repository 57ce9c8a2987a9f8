// Package emailprovider клиент HTTP API сервиса транзакционных писем Resend.
package emailprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/planner/internal/models"
)

// DefaultAPIURL адрес API по умолчанию.
const DefaultAPIURL = "https://api.resend.com"

// ErrNotConfigured не задан API-ключ.
var ErrNotConfigured = errors.New("resend api key not configured")

// Client отправляет письма через Resend.
type Client struct {
	apiKey     string
	from       string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Resend. Пустой apiURL — DefaultAPIURL.
func NewClient(apiKey, from, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiKey:     apiKey,
		from:       from,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// SendEmail отправляет письмо и возвращает идентификатор, присвоенный сервисом.
func (c *Client) SendEmail(ctx context.Context, reqParams SendEmailRequest) (*SendEmailResponse, error) {
	const op = "emailprovider.SendEmail"
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/emails", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var sendResp SendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sendResp, nil
}

// Deliver отправляет письмо от адреса по умолчанию одному получателю.
func (c *Client) Deliver(ctx context.Context, email models.Email) error {
	_, err := c.SendEmail(ctx, SendEmailRequest{
		From:    c.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	return err
}
