package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounts := router.Group("/api/accounts")
	{
		accounts.GET("", h.ListAccounts)
		accounts.POST("", h.CreateAccount)
		accounts.GET("/:id", h.GetAccount)
		accounts.PUT("/:id", h.UpdateAccount)
		accounts.DELETE("/:id", h.DeleteAccount)
	}
}

// ListAccounts returns paginated accounts with optional search
// @Summary      List accounts
// @Tags         accounts
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        search  query  string  false  "Search by name"
// @Success      200  {object}  response.Response
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	params := pagination.Parse(c)
	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, accounts, params.Page, params.Limit, total))
}

// CreateAccount creates a new account
// @Summary      Create account
// @Tags         accounts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateAccountRequest  true  "Account payload"
// @Success      201  {object}  response.Response
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, account))
}

// GetAccount returns a single account
// @Summary      Get account
// @Tags         accounts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid account id"))
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// UpdateAccount updates account fields
// @Summary      Update account
// @Tags         accounts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Account ID"
// @Param        payload  body  service.UpdateAccountRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid account id"))
		return
	}

	var req service.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// DeleteAccount deletes an account
// @Summary      Delete account
// @Tags         accounts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid account id"))
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Account deleted successfully"}))
}
