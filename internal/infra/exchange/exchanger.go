package exchange

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"agentgate/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTimeout = 10 * time.Second

// HTTPExchanger presents the caller credential to a token-exchange endpoint
// and returns a service-scoped token for the upstream agent service. At most
// one exchange attempt is made per call; retry policy belongs to callers.
type HTTPExchanger struct {
	endpoint   string
	httpClient *http.Client
	cache      domain.TokenCache
	cacheTTL   time.Duration
}

type Option func(*HTTPExchanger)

func WithHTTPClient(client *http.Client) Option {
	return func(e *HTTPExchanger) {
		if client != nil {
			e.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(e *HTTPExchanger) {
		if timeout > 0 {
			e.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithCache enables caching of exchanged tokens, keyed by caller subject.
// Without it every call performs a fresh exchange.
func WithCache(cache domain.TokenCache, ttl time.Duration) Option {
	return func(e *HTTPExchanger) {
		if cache != nil && ttl > 0 {
			e.cache = cache
			e.cacheTTL = ttl
		}
	}
}

func NewHTTPExchanger(endpoint string, opts ...Option) (*HTTPExchanger, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("token exchange endpoint is required")
	}
	e := &HTTPExchanger{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (e *HTTPExchanger) Exchange(ctx context.Context, cred domain.Credential) (domain.AuthContext, error) {
	if strings.TrimSpace(cred.Token) == "" {
		return domain.AuthContext{}, domain.ErrMissingCredential
	}
	subject := callerSubject(cred.Token)
	cacheKey := "exchange:subject:" + subject

	if e.cache != nil {
		if cached, ok, err := e.cache.Get(ctx, cacheKey); err == nil && ok {
			return cached, nil
		}
	}

	payload, err := json.Marshal(map[string]string{"token": cred.Token})
	if err != nil {
		return domain.AuthContext{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.AuthContext{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.AuthContext{}, ctx.Err()
		}
		return domain.AuthContext{}, &domain.UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "token exchange endpoint unreachable",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AuthContext{}, &domain.UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "reading token exchange response failed",
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.AuthContext{}, exchangeRejected(resp.StatusCode, raw)
	}

	var out exchangeResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.AccessToken == "" {
		return domain.AuthContext{}, &domain.UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: "token exchange returned malformed response",
			Err:     domain.ErrExchangeFailed,
		}
	}

	authCtx := domain.AuthContext{
		Token:   out.AccessToken,
		Subject: subject,
		Kind:    cred.Kind,
	}
	if e.cache != nil {
		ttl := e.cacheTTL
		if out.ExpiresIn > 0 {
			if expiry := time.Duration(out.ExpiresIn) * time.Second; expiry < ttl {
				ttl = expiry
			}
		}
		_ = e.cache.Put(ctx, cacheKey, authCtx, ttl)
	}
	return authCtx, nil
}

// exchangeRejected maps a non-2xx exchange response to a typed failure that
// keeps the endpoint's own status (an expired token stays 401, a revoked
// one 403).
func exchangeRejected(status int, raw []byte) *domain.UpstreamError {
	out := &domain.UpstreamError{
		Status:  status,
		Message: "token exchange rejected",
		Err:     domain.ErrExchangeFailed,
	}
	var parsed struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != "" {
			out.Message = parsed.Error
		}
		if parsed.Detail != nil {
			out.Detail = parsed.Detail
		}
	}
	return out
}

// Passthrough is the exchanger used when no exchange endpoint is
// configured: the caller credential is already valid against the upstream
// agent service and is forwarded as-is.
type Passthrough struct{}

func (Passthrough) Exchange(_ context.Context, cred domain.Credential) (domain.AuthContext, error) {
	if strings.TrimSpace(cred.Token) == "" {
		return domain.AuthContext{}, domain.ErrMissingCredential
	}
	return domain.AuthContext{
		Token:   cred.Token,
		Subject: callerSubject(cred.Token),
		Kind:    cred.Kind,
	}, nil
}

// callerSubject derives a stable identity reference from the caller token:
// the sub claim for JWTs (parsed without signature verification, which is
// the upstream's job), or a digest of the raw token for opaque credentials.
func callerSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			return sub
		}
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

var (
	_ domain.TokenExchanger = (*HTTPExchanger)(nil)
	_ domain.TokenExchanger = Passthrough{}
)
