package http

import (
	"errors"
	"io"
	"net/http"

	"agentgate/api/clients/agent"
	"agentgate/internal/domain"

	"github.com/gin-gonic/gin"
)

// errorResponse is the wire shape of every failure returned to the inbound
// caller.
type errorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	upstream := "unconfigured"
	if s.agent != nil && s.agent.BaseURL != "" {
		upstream = "configured"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "upstream": upstream})
}

func (s *Server) handleListModels(c *gin.Context) {
	authCtx, ok := s.optionalAuth(c)
	if !ok {
		return
	}
	s.forward(c, agent.UserHeaders(authCtx))
}

func (s *Server) handleListAgents(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleGetAgent(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleCreateRun(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleGetRun(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleRunEvents(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleListConversations(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleCreateConversation(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleGetConversation(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleListWorkflows(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleExecuteWorkflow(c *gin.Context) {
	s.forwardUser(c)
}

func (s *Server) handleAdminListClients(c *gin.Context) {
	s.forwardAdmin(c)
}

func (s *Server) handleAdminCreateClient(c *gin.Context) {
	s.forwardAdmin(c)
}

func (s *Server) handleAdminDeleteClient(c *gin.Context) {
	s.forwardAdmin(c)
}

// forwardUser runs the required-auth guard and proxies the request with the
// caller's exchanged credential.
func (s *Server) forwardUser(c *gin.Context) {
	authCtx, ok := s.requireAuth(c)
	if !ok {
		return
	}
	s.forward(c, agent.UserHeaders(authCtx))
}

// forwardAdmin proxies the request with the statically configured admin
// credential. The caller's own credential, if any, is never attached: every
// outbound call carries exactly one credential kind.
func (s *Server) forwardAdmin(c *gin.Context) {
	if s.agent == nil {
		writeErrorMessage(c, http.StatusInternalServerError, "upstream not configured")
		return
	}
	headers, err := s.agent.AdminHeaders()
	if err != nil {
		writeError(c, err)
		return
	}
	s.forward(c, headers)
}

// forward relays the inbound request to the same path on the upstream agent
// service and mirrors the upstream response back verbatim.
func (s *Server) forward(c *gin.Context, headers http.Header) {
	if !s.enforceRateLimit(c) {
		return
	}
	if s.agent == nil {
		writeErrorMessage(c, http.StatusInternalServerError, "upstream not configured")
		return
	}

	var body []byte
	if c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			writeErrorMessage(c, http.StatusBadRequest, "reading request body failed")
			return
		}
		body = raw
	}

	if headers == nil {
		headers = http.Header{}
	}
	if id := requestID(c); id != "" {
		headers.Set("X-Request-ID", id)
	}

	raw, status, err := s.agent.Do(c.Request.Context(), c.Request.Method, c.Request.URL.Path, c.Request.URL.Query(), headers, body)
	if err != nil {
		writeError(c, err)
		return
	}
	if raw == nil {
		c.Status(status)
		return
	}
	c.Data(status, "application/json", raw)
}

// writeError converts any failure from the auth or upstream path into the
// caller-visible response, preserving upstream status semantics.
func writeError(c *gin.Context, err error) {
	if upstream, ok := domain.IsUpstreamError(err); ok {
		c.JSON(upstream.Status, errorResponse{
			Error:  upstream.Message,
			Detail: upstream.Detail,
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		writeErrorMessage(c, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorMessage(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeErrorMessage(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeErrorMessage(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAdminCredentialUnset):
		writeErrorMessage(c, http.StatusInternalServerError, "admin credential not configured")
	default:
		writeErrorMessage(c, http.StatusInternalServerError, "internal error")
	}
}

func writeErrorMessage(c *gin.Context, status int, message string) {
	c.JSON(status, errorResponse{Error: message})
}
