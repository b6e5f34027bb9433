package handlers

import (
	"net/http"

	accountService "taskpilot/services/account"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountHandler serves work-account management endpoints.
type AccountHandler struct {
	Accounts accountService.AccountService
}

// CreateAccountHandler handles POST /api/accounts.
func (h *AccountHandler) CreateAccountHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req accountService.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.Accounts.Create(actor, req)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	utils.GetLogger().Info("Account created", zap.String("accountId", account.ID), zap.String("name", account.AccountName))
	c.JSON(http.StatusCreated, account)
}

// UpdateAccountHandler handles PATCH /api/accounts/:id.
func (h *AccountHandler) UpdateAccountHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req accountService.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.Accounts.Update(actor, c.Param("id"), req)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// DeactivateAccountHandler handles DELETE /api/accounts/:id.
func (h *AccountHandler) DeactivateAccountHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	account, err := h.Accounts.Deactivate(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// GetAccountHandler handles GET /api/accounts/:id.
func (h *AccountHandler) GetAccountHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	account, err := h.Accounts.GetByID(actor, c.Param("id"))
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// ListAccountsHandler handles GET /api/accounts.
func (h *AccountHandler) ListAccountsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	query := accountService.ListQuery{
		AccountType: c.Query("accountType"),
		BrowserType: c.Query("browserType"),
		Search:      c.Query("search"),
	}
	if raw := c.Query("assigned"); raw != "" {
		assigned := raw == "true"
		query.Assigned = &assigned
	}

	accounts, err := h.Accounts.List(actor, query)
	if err != nil {
		utils.JSONServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}
