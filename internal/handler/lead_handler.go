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

type LeadHandler struct {
	leadService service.LeadService
}

func NewLeadHandler(leadService service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

func (h *LeadHandler) RegisterRoutes(router *gin.RouterGroup) {
	leads := router.Group("/api/leads")
	{
		leads.GET("", h.ListLeads)
		leads.POST("", h.CreateLead)
		leads.GET("/:id", h.GetLead)
		leads.PUT("/:id", h.UpdateLead)
		leads.DELETE("/:id", h.DeleteLead)
		leads.POST("/:id/convert", h.ConvertLead)
	}
}

// ListLeads returns paginated leads with optional status/search filters
// @Summary      List leads
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        status  query  string  false  "Filter by status: new, contacted, qualified, converted, dead"
// @Param        search  query  string  false  "Search by name, email, company"
// @Success      200  {object}  response.Response
// @Router       /api/leads [get]
func (h *LeadHandler) ListLeads(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.LeadFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	leads, total, err := h.leadService.ListLeads(c.Request.Context(), filter)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, leads, params.Page, params.Limit, total))
}

// CreateLead creates a new lead, rejecting duplicates by email or phone
// @Summary      Create lead
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateLeadRequest  true  "Lead payload"
// @Success      201  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lead))
}

// GetLead returns a single lead
// @Summary      Get lead
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid lead id"))
		return
	}

	lead, err := h.leadService.GetLead(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// UpdateLead updates lead fields
// @Summary      Update lead
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Lead ID"
// @Param        payload  body  service.UpdateLeadRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id} [put]
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid lead id"))
		return
	}

	var req service.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	lead, err := h.leadService.UpdateLead(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// DeleteLead deletes a lead
// @Summary      Delete lead
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id} [delete]
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid lead id"))
		return
	}

	if err := h.leadService.DeleteLead(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Lead deleted successfully"}))
}

// ConvertLead converts a lead into an account, contact, and deal in one
// transaction. Submitted overrides replace individual derived fields.
// @Summary      Convert lead
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true   "Lead ID"
// @Param        payload  body  service.ConvertLeadRequest  false  "Field overrides"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/leads/{id}/convert [post]
func (h *LeadHandler) ConvertLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid lead id"))
		return
	}

	// Body is optional: converting with no overrides is the common case.
	var req service.ConvertLeadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}
	}

	result, err := h.leadService.ConvertLead(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
