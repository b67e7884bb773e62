// Package api exposes balance histories over HTTP.
package api

import (
	"net/http"

	"github.com/Veraticus/balance-history/internal/service"
	"github.com/gin-gonic/gin"
)

// Config holds configuration options for the API server.
type Config struct {
	// DefaultDays applies when a request has no days parameter.
	DefaultDays int
}

// Server routes HTTP requests to the history engine and account store.
type Server struct {
	history     service.HistoryService
	accounts    service.AccountStore
	router      *gin.Engine
	defaultDays int
}

// NewServer builds the router. Callers choose the gin mode beforehand.
func NewServer(history service.HistoryService, accounts service.AccountStore, config Config) *Server {
	s := &Server{
		history:     history,
		accounts:    accounts,
		defaultDays: config.DefaultDays,
	}

	router := gin.New()
	router.Use(RequestID(), RequestLogger(), Recovery())

	router.GET("/health", s.health)
	users := router.Group("/api/users/:userID")
	{
		users.GET("/balance-history", s.balanceHistory)
		users.GET("/accounts", s.listAccounts)
	}

	s.router = router
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
