package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/forum"
	gql "github.com/emilythestrangee/forum/backend/internal/graphql"
	"github.com/emilythestrangee/forum/backend/internal/handlers"
	"github.com/emilythestrangee/forum/backend/internal/identity"
	"github.com/emilythestrangee/forum/backend/internal/middleware"
)

// Deps are the long-lived services the HTTP layer is built on.
type Deps struct {
	DB     database.Service
	Forum  *forum.Service
	Tokens *identity.Tokens
	Broker *identity.Broker
}

type Server struct {
	conf    config.HTTPServer
	deps    Deps
	handler *handlers.Handler
	gql     *gql.Handler
	http    *http.Server
}

// NewServer creates and configures a new server
func NewServer(conf config.HTTPServer, deps Deps) (*Server, error) {
	gqlHandler, err := gql.New(deps.Forum)
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}

	s := &Server{
		conf:    conf,
		deps:    deps,
		handler: handlers.NewHandler(deps.DB.GetDB(), deps.Forum, deps.Tokens, deps.Broker),
		gql:     gqlHandler,
	}

	s.http = &http.Server{
		Addr:         net.JoinHostPort(conf.BindAddress, conf.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  conf.IdleTimeout,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
	}
	return s, nil
}

func (s *Server) Addr() string {
	return s.http.Addr
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		conf.AllowAllOrigins = true
		return conf
	}
	conf.AllowOrigins = origins
	conf.AllowCredentials = true
	return conf
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(s.conf.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		stats := s.deps.DB.Health(c.Request.Context())
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	optional := middleware.OptionalAuth(s.deps.Tokens)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Thread and reply reads
		api.GET("/threads", s.handler.Thread.GetThreads)
		api.GET("/threads/:id", optional, s.handler.Thread.GetThread)
		api.GET("/threads/:id/replies", s.handler.Reply.GetReplies)

		api.POST("/graphql", optional, gin.WrapH(s.gql))

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.deps.Tokens))
		{
			protected.POST("/logout", s.handler.Auth.Logout)
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/threads", s.handler.Thread.CreateThread)
			protected.POST("/threads/:id/vote", s.handler.Thread.VoteThread)
			protected.POST("/threads/:id/replies", s.handler.Reply.CreateReply)
		}
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. Identity
// events are audited for as long as the server runs.
func (s *Server) Run(ctx context.Context) error {
	events, unsubscribe := s.deps.Broker.Subscribe(64)
	audited := make(chan struct{})
	go func() {
		defer close(audited)
		auditIdentity(events)
	}()
	defer func() {
		unsubscribe()
		<-audited
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Println("[SHUTDOWN] http server shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.conf.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func auditIdentity(events <-chan identity.Event) {
	for e := range events {
		log.Printf("[AUTH] %s user=%d (%s) at %s", e.Kind, e.UserID, e.Username, e.At.Format(time.RFC3339))
	}
}
