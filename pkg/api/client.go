package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/userstack/userstack-go/pkg/session"
)

// Operation names carried by RequestError.
const (
	OpIdentify = "identify"
	OpRefresh  = "refresh"
	OpSetGroup = "setgroup"
	OpUpgrade  = "upgrade"
	OpSummary  = "summary"
	OpVerify   = "verify"
)

const (
	headerAppID     = "X-Userstack-App-Id"
	headerRequestID = "X-Request-Id"

	// maxBodySize caps how much of a response is read (error bodies
	// are echoed back to embedders, so keep them bounded).
	maxBodySize = 64 * 1024
)

// Client issues the session service's request types against a
// configured base URL and application identifier. Client-side
// operations authenticate with the app id header alone; privileged
// server-side operations (Verify, privileged Summary) additionally
// carry a basic-auth API key. The asymmetry is deliberate: code
// shipped to untrusted clients never holds a secret.
type Client struct {
	baseURL    string
	appID      string
	apiKey     string
	tierField  string
	httpClient *http.Client
}

// New creates a remote session service client.
func New(baseURL, appID string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if appID == "" {
		return nil, ErrMissingAppID
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type identifyRequest struct {
	Credential string          `json:"credential"`
	Config     identifyOptions `json:"config"`
}

type identifyOptions struct {
	TTL       int64          `json:"ttl,omitempty"` // seconds
	GroupID   string         `json:"groupId,omitempty"`
	GroupName string         `json:"groupName,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Identify exchanges a credential for a fresh session record.
func (c *Client) Identify(ctx context.Context, credential string, cfg session.IdentifyConfig) (session.Record, error) {
	req := identifyRequest{
		Credential: credential,
		Config: identifyOptions{
			GroupID:   cfg.GroupID,
			GroupName: cfg.GroupName,
			Data:      cfg.Data,
		},
	}
	if cfg.TTL > 0 {
		req.Config.TTL = int64(cfg.TTL / time.Second)
	}

	body, err := c.post(ctx, OpIdentify, "/identify", req, false, ErrIdentifyFailed)
	if err != nil {
		return session.Record{}, err
	}
	return c.decodeRecord(OpIdentify, body, ErrIdentifyFailed)
}

// Refresh asks the server to recompute the record for a session.
func (c *Client) Refresh(ctx context.Context, sessionID string) (session.Record, error) {
	body, err := c.post(ctx, OpRefresh, "/refresh",
		map[string]string{"sessionId": sessionID}, false, ErrRefreshFailed)
	if err != nil {
		return session.Record{}, err
	}
	return c.decodeRecord(OpRefresh, body, ErrRefreshFailed)
}

// SetGroup assigns the session to a group and returns the updated record.
func (c *Client) SetGroup(ctx context.Context, sessionID, groupID string) (session.Record, error) {
	body, err := c.post(ctx, OpSetGroup, "/setgroup",
		map[string]string{"sessionId": sessionID, "groupId": groupID}, false, ErrGroupChangeFailed)
	if err != nil {
		return session.Record{}, err
	}
	return c.decodeRecord(OpSetGroup, body, ErrGroupChangeFailed)
}

// Upgrade starts a plan upgrade and returns the checkout redirect URL,
// or "" when the server supplied none.
func (c *Client) Upgrade(ctx context.Context, sessionID, planID, successURL, cancelURL string) (string, error) {
	body, err := c.post(ctx, OpUpgrade, "/upgrade", map[string]string{
		"sessionId":  sessionID,
		"planId":     planID,
		"successUrl": successURL,
		"cancelUrl":  cancelURL,
	}, false, ErrUpgradeFailed)
	if err != nil {
		return "", err
	}

	var resp struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &RequestError{Op: OpUpgrade, Body: "malformed response: " + err.Error(), sentinel: ErrUpgradeFailed}
	}
	return resp.RedirectURL, nil
}

// Summary fetches the application's usage summary. When an API key is
// configured the privileged variant is requested.
func (c *Client) Summary(ctx context.Context) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, OpSummary, "/summary", nil, c.apiKey != "", ErrSummaryFailed)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &RequestError{Op: OpSummary, Body: "malformed response: " + err.Error(), sentinel: ErrSummaryFailed}
	}
	return payload, nil
}

// Verify validates a session presented by a client. Privileged: trusted
// server-side callers only, requires a configured API key.
func (c *Client) Verify(ctx context.Context, sessionID string) (session.Record, error) {
	if c.apiKey == "" {
		return session.Record{}, ErrMissingAPIKey
	}

	body, err := c.post(ctx, OpVerify, "/verify",
		map[string]string{"sessionId": sessionID}, true, ErrVerifyFailed)
	if err != nil {
		return session.Record{}, err
	}
	return c.decodeRecord(OpVerify, body, ErrVerifyFailed)
}

func (c *Client) post(ctx context.Context, op, path string, payload any, privileged bool, sentinel error) ([]byte, error) {
	return c.do(ctx, http.MethodPost, op, path, payload, privileged, sentinel)
}

func (c *Client) do(ctx context.Context, method, op, path string, payload any, privileged bool, sentinel error) ([]byte, error) {
	if privileged && c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &RequestError{Op: op, Body: err.Error(), sentinel: sentinel}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &RequestError{Op: op, Body: err.Error(), sentinel: sentinel}
	}

	req.Header.Set(headerAppID, c.appID)
	req.Header.Set(headerRequestID, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if privileged {
		req.Header.Set("Authorization", "Basic "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport errors share the non-ok failure path.
		return nil, &RequestError{Op: op, Body: err.Error(), sentinel: sentinel}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Op:       op,
			Status:   resp.StatusCode,
			Body:     string(body),
			sentinel: sentinel,
		}
	}

	return body, nil
}

// decodeRecord parses a session record payload. Deployments disagree
// on the tier field name ("plan" vs "package" vs "tier"); the client
// resolves the configured name first, then the known aliases.
func (c *Client) decodeRecord(op string, body []byte, sentinel error) (session.Record, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return session.Record{}, &RequestError{Op: op, Body: "malformed response: " + err.Error(), sentinel: sentinel}
	}

	rec := session.Record{
		Tier:  session.TierNone,
		Flags: map[string]any{},
	}

	if raw, ok := payload["sessionId"]; ok {
		_ = json.Unmarshal(raw, &rec.SessionID)
	}
	if raw, ok := payload["flags"]; ok {
		_ = json.Unmarshal(raw, &rec.Flags)
	}

	fields := []string{"tier", "plan", "package"}
	if c.tierField != "" {
		fields = append([]string{c.tierField}, fields...)
	}
	for _, field := range fields {
		raw, ok := payload[field]
		if !ok {
			continue
		}
		var tier string
		if err := json.Unmarshal(raw, &tier); err == nil && tier != "" {
			rec.Tier = tier
			break
		}
	}

	return rec, nil
}
