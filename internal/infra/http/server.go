package http

import (
	"log"
	"net/http"
	"strings"
	"time"

	"agentgate/api/clients/agent"
	"agentgate/internal/config"
	"agentgate/internal/domain"
	"agentgate/internal/infra/cachemem"
	"agentgate/internal/infra/cacheredis"
	"agentgate/internal/infra/exchange"
	"agentgate/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultCookieName = "auth_token"

type Server struct {
	cfg Config
	r   *gin.Engine

	exchanger domain.TokenExchanger
	agent     *agent.Client

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
	rateLimitClosed   bool

	initErr error
}

// Config is the subset of process configuration the server needs, with
// accessors resolving defaults.
type Config = config.Config

type ServerDeps struct {
	Exchanger   domain.TokenExchanger
	Agent       *agent.Client
	RateLimiter domain.RateLimiter
}

// NewServer wires the server from configuration alone: exchanger (HTTP or
// pass-through), optional redis- or memory-backed token cache and rate
// limiter, and the upstream agent client.
func NewServer(cfg Config) *Server {
	deps := ServerDeps{}

	deps.Agent = agent.NewClient(cfg.AgentBaseURL,
		agent.WithTimeout(cfg.UpstreamTimeout()),
		agent.WithAdminToken(cfg.AdminAPIToken),
	)

	if cfg.TokenExchangeURL == "" {
		deps.Exchanger = exchange.Passthrough{}
	} else {
		opts := []exchange.Option{exchange.WithTimeout(cfg.ExchangeTimeout())}
		if ttl := cfg.ExchangeCacheTTL(); ttl > 0 {
			var cache domain.TokenCache
			if cfg.RedisAddr != "" {
				if redisCache, err := cacheredis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err == nil {
					cache = redisCache
				}
			}
			if cache == nil {
				cache = cachemem.New()
			}
			opts = append(opts, exchange.WithCache(cache, ttl))
		}
		exchanger, err := exchange.NewHTTPExchanger(cfg.TokenExchangeURL, opts...)
		if err != nil {
			return &Server{cfg: cfg, initErr: err}
		}
		deps.Exchanger = exchanger
	}

	if cfg.RateLimitRequests > 0 {
		if cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil); err == nil {
				deps.RateLimiter = limiter
			}
		}
		if deps.RateLimiter == nil {
			deps.RateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: cfg.RateLimitMaxKeys,
			})
		}
	}

	if cfg.AdminAPIToken == "" {
		log.Printf("ADMIN_API_TOKEN not set; admin routes will fail with a configuration error")
	}

	return NewServerWithDeps(cfg, deps)
}

func NewServerWithDeps(cfg Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:         cfg,
		r:           r,
		exchanger:   deps.Exchanger,
		agent:       deps.Agent,
		rateLimiter: deps.RateLimiter,
	}
	s.rateLimitRequests = cfg.RateLimitRequests
	s.rateLimitWindow = cfg.RateLimitWindow()
	s.rateLimitClosed = cfg.RateLimitFailClosed
	r.Use(requestIDMiddleware())
	s.routes()
	return s
}

func (s *Server) cookieName() string {
	if name := strings.TrimSpace(s.cfg.AuthCookieName); name != "" {
		return name
	}
	return defaultCookieName
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealthz)

	v1 := s.r.Group("/v1")
	{
		v1.GET("/models", s.handleListModels)

		v1.GET("/agents", s.handleListAgents)
		v1.GET("/agents/:agent_id", s.handleGetAgent)
		v1.POST("/agents/:agent_id/runs", s.handleCreateRun)

		v1.GET("/runs/:run_id", s.handleGetRun)
		v1.GET("/runs/:run_id/events", s.handleRunEvents)

		v1.GET("/conversations", s.handleListConversations)
		v1.POST("/conversations", s.handleCreateConversation)
		v1.GET("/conversations/:conversation_id", s.handleGetConversation)

		v1.GET("/workflows", s.handleListWorkflows)
		v1.POST("/workflows/:workflow_id/execute", s.handleExecuteWorkflow)

		v1.GET("/admin/clients", s.handleAdminListClients)
		v1.POST("/admin/clients", s.handleAdminCreateClient)
		v1.DELETE("/admin/clients/:client_id", s.handleAdminDeleteClient)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorMessage(c, http.StatusNotFound, "route not found")
	})
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}

const requestIDKey = "request_id"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if value, ok := c.Get(requestIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return strings.TrimSpace(c.GetHeader("X-Request-ID"))
}
