package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DealHandler struct {
	dealService service.DealService
}

func NewDealHandler(dealService service.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

func (h *DealHandler) RegisterRoutes(router *gin.RouterGroup) {
	deals := router.Group("/api/deals")
	{
		deals.GET("", h.ListDeals)
		deals.POST("", h.CreateDeal)
		deals.GET("/:id", h.GetDeal)
		deals.PUT("/:id", h.UpdateDeal)
		deals.DELETE("/:id", h.DeleteDeal)
		deals.POST("/:id/move", h.MoveDeal)
		deals.GET("/:id/stage-history", h.StageHistory)
	}
}

// ListDeals returns paginated deals with optional stage/contact/search filters
// @Summary      List deals
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Param        page        query  int     false  "Page number (default: 1)"
// @Param        limit       query  int     false  "Items per page (default: 20)"
// @Param        stage       query  string  false  "Filter by legacy stage value"
// @Param        contact_id  query  string  false  "Filter by contact"
// @Param        search      query  string  false  "Search by title"
// @Success      200  {object}  response.Response
// @Router       /api/deals [get]
func (h *DealHandler) ListDeals(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.DealFilter{
		Stage:  c.Query("stage"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if raw := c.Query("contact_id"); raw != "" {
		contactID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid contact_id"))
			return
		}
		filter.ContactID = &contactID
	}

	deals, total, err := h.dealService.ListDeals(c.Request.Context(), filter)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, deals, params.Page, params.Limit, total))
}

// CreateDeal creates a deal, placing it on the default pipeline when no
// stage was submitted
// @Summary      Create deal
// @Tags         deals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateDealRequest  true  "Deal payload"
// @Success      201  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals [post]
func (h *DealHandler) CreateDeal(c *gin.Context) {
	var req service.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.CreateDeal(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, deal))
}

// GetDeal returns a single deal
// @Summary      Get deal
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Deal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals/{id} [get]
func (h *DealHandler) GetDeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid deal id"))
		return
	}

	deal, err := h.dealService.GetDeal(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// UpdateDeal updates deal fields
// @Summary      Update deal
// @Tags         deals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Deal ID"
// @Param        payload  body  service.UpdateDealRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals/{id} [put]
func (h *DealHandler) UpdateDeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid deal id"))
		return
	}

	var req service.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.UpdateDeal(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// DeleteDeal deletes a deal
// @Summary      Delete deal
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Deal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals/{id} [delete]
func (h *DealHandler) DeleteDeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid deal id"))
		return
	}

	if err := h.dealService.DeleteDeal(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Deal deleted successfully"}))
}

type moveDealRequest struct {
	StageID uuid.UUID `json:"stage_id" binding:"required"`
}

// MoveDeal moves a deal to a target stage, recording the transition
// @Summary      Move deal to stage
// @Tags         deals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string           true  "Deal ID"
// @Param        payload  body  moveDealRequest  true  "Target stage"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals/{id}/move [post]
func (h *DealHandler) MoveDeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid deal id"))
		return
	}

	var req moveDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.MoveDeal(c.Request.Context(), middleware.CurrentUser(c), id, req.StageID)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// StageHistory returns the deal's stage transitions, newest first
// @Summary      Deal stage history
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Deal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals/{id}/stage-history [get]
func (h *DealHandler) StageHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid deal id"))
		return
	}

	history, err := h.dealService.StageHistory(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}
