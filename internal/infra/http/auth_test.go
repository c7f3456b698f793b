package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agentgate/internal/config"

	"github.com/gin-gonic/gin"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"empty", "", ""},
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"mixed case scheme", "BeArEr abc123", "abc123"},
		{"surrounding whitespace", "  Bearer   abc123  ", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer ", ""},
		{"no scheme", "abc123", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractBearerToken(tc.value); got != tc.want {
				t.Fatalf("extractBearerToken(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestExtractCredential_CustomCookieName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := NewServerWithDeps(config.Config{AuthCookieName: "session"}, ServerDeps{})

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	c.Request.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})

	cred, ok := server.extractCredential(c)
	if !ok {
		t.Fatal("expected credential from configured cookie")
	}
	if cred.Token != "cookie-token" {
		t.Fatalf("unexpected token: %q", cred.Token)
	}

	// The default cookie name is no longer honored once overridden.
	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	c2.Request.AddCookie(&http.Cookie{Name: "auth_token", Value: "cookie-token"})
	if _, ok := server.extractCredential(c2); ok {
		t.Fatal("default cookie must be ignored when a custom name is set")
	}
}

func TestExtractCredential_EmptyValuesIgnored(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := NewServerWithDeps(config.Config{}, ServerDeps{})

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	c.Request.AddCookie(&http.Cookie{Name: "auth_token", Value: ""})

	if _, ok := server.extractCredential(c); ok {
		t.Fatal("empty cookie value must not produce a credential")
	}
}
