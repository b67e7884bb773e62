package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/balance-history/internal/common"
	"github.com/Veraticus/balance-history/internal/model"
	"github.com/Veraticus/balance-history/internal/service"
	"github.com/gin-gonic/gin"
)

// AccountsResponse lists a user's accounts.
type AccountsResponse struct {
	Accounts []model.Account `json:"accounts"`
	Count    int             `json:"count"`
}

func (s *Server) balanceHistory(c *gin.Context) {
	opts := service.HistoryOptions{
		Type: c.Query("type"),
		Days: s.defaultDays,
	}

	if raw, ok := c.GetQuery("days"); ok {
		days, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		opts.Days = days
	}

	history, err := s.history.GetBalanceHistory(c.Request.Context(), c.Param("userID"), opts)
	if err != nil {
		if errors.Is(err, common.ErrInvalidOptions) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute balance history"})
		return
	}

	c.JSON(http.StatusOK, history)
}

func (s *Server) listAccounts(c *gin.Context) {
	accounts, err := s.accounts.ListAccounts(c.Request.Context(), c.Param("userID"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch accounts"})
		return
	}

	if accounts == nil {
		accounts = make([]model.Account, 0)
	}
	c.JSON(http.StatusOK, AccountsResponse{Accounts: accounts, Count: len(accounts)})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
