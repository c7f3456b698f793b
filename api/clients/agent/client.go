package agent

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

	"agentgate/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client calls the upstream agent service. It performs exactly one attempt
// per call and translates every non-success outcome into a
// *domain.UpstreamError with the upstream's own status preserved.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	adminToken string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.HTTPClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.HTTPClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithAdminToken sets the statically configured admin credential. It is
// resolved once at construction; changing the underlying secret requires a
// process restart.
func WithAdminToken(token string) Option {
	return func(c *Client) {
		c.adminToken = strings.TrimSpace(token)
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// UserHeaders builds the outbound header set for a user-scoped call. An
// unauthenticated context (optional-auth flow) yields no auth header at all.
func UserHeaders(authCtx domain.AuthContext) http.Header {
	headers := http.Header{}
	if authCtx.Authenticated() {
		headers.Set("Authorization", "Bearer "+authCtx.Token)
	}
	return headers
}

// AdminHeaders builds the outbound header set for a privileged admin call.
// The admin credential never comes from an inbound request.
func (c *Client) AdminHeaders() (http.Header, error) {
	if c.adminToken == "" {
		return nil, domain.ErrAdminCredentialUnset
	}
	headers := http.Header{}
	headers.Set("X-Admin-Token", c.adminToken)
	return headers, nil
}

// Do performs an HTTP call against the upstream agent service. On 2xx the
// response body is returned as raw JSON (nil for an empty body) together
// with the upstream status. Failures come back as *domain.UpstreamError:
// transport errors map to 502, unparseable 2xx bodies to 500, and non-2xx
// responses keep the upstream status with any detail/error field intact.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, headers http.Header, body []byte) (json.RawMessage, int, error) {
	if c == nil || c.BaseURL == "" {
		return nil, 0, fmt.Errorf("agent client base URL is required")
	}
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for name, values := range headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	if len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &domain.UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "agent service unreachable",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &domain.UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "reading agent response failed",
			Err:     err,
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			return nil, resp.StatusCode, nil
		}
		if !json.Valid(trimmed) {
			return nil, 0, &domain.UpstreamError{
				Status:  http.StatusInternalServerError,
				Message: "agent service returned malformed JSON",
			}
		}
		return json.RawMessage(trimmed), resp.StatusCode, nil
	}

	return nil, 0, upstreamFailure(resp.StatusCode, raw)
}

// upstreamFailure turns a non-2xx upstream response into an UpstreamError,
// keeping the upstream's status and surfacing its detail/error field
// verbatim when the body is parseable JSON.
func upstreamFailure(status int, raw []byte) *domain.UpstreamError {
	out := &domain.UpstreamError{
		Status:  status,
		Message: http.StatusText(status),
	}
	var parsed struct {
		Detail  any    `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		switch {
		case parsed.Error != "":
			out.Message = parsed.Error
		case parsed.Message != "":
			out.Message = parsed.Message
		}
		if parsed.Detail != nil {
			out.Detail = parsed.Detail
		}
		return out
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		out.Detail = text
	}
	return out
}
