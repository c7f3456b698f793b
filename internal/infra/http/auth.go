package http

import (
	"net/http"
	"strings"

	"agentgate/internal/domain"

	"github.com/gin-gonic/gin"
)

const authContextKey = "auth_context"

// requireAuth is the guard every protected handler calls first. It extracts
// the caller credential, exchanges it, and either stashes the resolved
// context and returns true, or writes the terminal failure response and
// returns false. Callers must return immediately on false without touching
// the response again.
func (s *Server) requireAuth(c *gin.Context) (domain.AuthContext, bool) {
	cred, ok := s.extractCredential(c)
	if !ok {
		writeErrorMessage(c, http.StatusUnauthorized, "Authentication required")
		return domain.AuthContext{}, false
	}
	return s.exchangeCredential(c, cred)
}

// optionalAuth is the guard for routes that serve anonymous callers: a
// missing credential yields an unauthenticated context instead of a 401. A
// present credential is still exchanged, and exchange failures still reject
// the request (a bad token is never silently downgraded to anonymous).
func (s *Server) optionalAuth(c *gin.Context) (domain.AuthContext, bool) {
	cred, ok := s.extractCredential(c)
	if !ok {
		return domain.AuthContext{}, true
	}
	return s.exchangeCredential(c, cred)
}

func (s *Server) exchangeCredential(c *gin.Context, cred domain.Credential) (domain.AuthContext, bool) {
	if s.exchanger == nil {
		writeErrorMessage(c, http.StatusInternalServerError, "auth configuration error")
		return domain.AuthContext{}, false
	}
	authCtx, err := s.exchanger.Exchange(c.Request.Context(), cred)
	if err != nil {
		writeError(c, err)
		return domain.AuthContext{}, false
	}
	c.Set(authContextKey, authCtx)
	return authCtx, true
}

// extractCredential pulls the caller's bearer token from the request. The
// Authorization header wins over the cookie so programmatic callers can
// override a browser-issued cookie. Absence is not an error.
func (s *Server) extractCredential(c *gin.Context) (domain.Credential, bool) {
	if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
		return domain.Credential{Token: token, Kind: domain.CredentialUser}, true
	}
	if value, err := c.Cookie(s.cookieName()); err == nil {
		if token := strings.TrimSpace(value); token != "" {
			return domain.Credential{Token: token, Kind: domain.CredentialUser}, true
		}
	}
	return domain.Credential{}, false
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func authContext(c *gin.Context) (domain.AuthContext, bool) {
	raw, ok := c.Get(authContextKey)
	if !ok {
		return domain.AuthContext{}, false
	}
	authCtx, ok := raw.(domain.AuthContext)
	return authCtx, ok
}
