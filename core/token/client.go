// Package token is the client for the join-credential and app-config
// service. The orchestrator uses it to obtain a room address plus an
// identity-scoped join token and to read the default instruction string;
// model and voice switching are exposed for front-ends.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// JoinGrant is an identity-scoped credential for one room join.
type JoinGrant struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// ModelOption is one selectable language model.
type ModelOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VoiceOption is one selectable synthesis voice.
type VoiceOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppConfig is the non-sensitive app configuration served to clients.
type AppConfig struct {
	DefaultSystemPrompt string        `json:"default_system_prompt"`
	RoomName            string        `json:"room_name"`
	ActiveModel         string        `json:"active_model"`
	Models              []ModelOption `json:"models"`
	ActiveVoice         string        `json:"active_voice"`
	Voices              []VoiceOption `json:"voices"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Token fetches a join grant for the given participant identity.
func (c *Client) Token(ctx context.Context, identity string) (JoinGrant, error) {
	endpoint := c.baseURL + "/api/token?identity=" + url.QueryEscape(identity)

	var grant JoinGrant
	if err := c.getJSON(ctx, endpoint, &grant); err != nil {
		return JoinGrant{}, fmt.Errorf("failed to fetch join grant: %w", err)
	}
	if grant.Token == "" || grant.URL == "" {
		return JoinGrant{}, fmt.Errorf("incomplete join grant (missing token or url)")
	}

	return grant, nil
}

// Config fetches the app configuration, including the default instruction
// string used to seed an empty prompt.
func (c *Client) Config(ctx context.Context) (AppConfig, error) {
	var config AppConfig
	if err := c.getJSON(ctx, c.baseURL+"/api/config", &config); err != nil {
		return AppConfig{}, fmt.Errorf("failed to fetch app config: %w", err)
	}
	return config, nil
}

// SetModel switches the active language model. The service rejects ids not
// present in its configured model list.
func (c *Client) SetModel(ctx context.Context, id string) error {
	if err := c.postJSON(ctx, c.baseURL+"/api/config/model", struct {
		Model string `json:"model"`
	}{Model: id}); err != nil {
		return fmt.Errorf("failed to set model: %w", err)
	}
	return nil
}

// SetVoice switches the active synthesis voice.
func (c *Client) SetVoice(ctx context.Context, id string) error {
	if err := c.postJSON(ctx, c.baseURL+"/api/config/voice", struct {
		Voice string `json:"voice"`
	}{Voice: id}); err != nil {
		return fmt.Errorf("failed to set voice: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	return nil
}
