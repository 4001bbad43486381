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

type ContactHandler struct {
	contactService  service.ContactService
	activityService service.ActivityService
}

func NewContactHandler(contactService service.ContactService, activityService service.ActivityService) *ContactHandler {
	return &ContactHandler{contactService: contactService, activityService: activityService}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	contacts := router.Group("/api/contacts")
	{
		contacts.GET("", h.ListContacts)
		contacts.POST("", h.CreateContact)
		contacts.GET("/:id", h.GetContact)
		contacts.PUT("/:id", h.UpdateContact)
		contacts.DELETE("/:id", h.DeleteContact)
		contacts.GET("/:id/activities", h.ListActivities)
	}
}

// ListContacts returns paginated contacts with optional search
// @Summary      List contacts
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        search  query  string  false  "Search by name or email"
// @Success      200  {object}  response.Response
// @Router       /api/contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	params := pagination.Parse(c)
	contacts, total, err := h.contactService.ListContacts(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, contacts, params.Page, params.Limit, total))
}

// CreateContact creates a contact, rejecting duplicate emails
// @Summary      Create contact
// @Tags         contacts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateContactRequest  true  "Contact payload"
// @Success      201  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req service.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contact))
}

// GetContact returns a single contact
// @Summary      Get contact
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Contact ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/contacts/{id} [get]
func (h *ContactHandler) GetContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid contact id"))
		return
	}

	contact, err := h.contactService.GetContact(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

// UpdateContact updates contact fields
// @Summary      Update contact
// @Tags         contacts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Contact ID"
// @Param        payload  body  service.UpdateContactRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/contacts/{id} [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid contact id"))
		return
	}

	var req service.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.contactService.UpdateContact(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

// DeleteContact deletes a contact
// @Summary      Delete contact
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Contact ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid contact id"))
		return
	}

	if err := h.contactService.DeleteContact(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Contact deleted successfully"}))
}

// ListActivities returns the contact's logged activities
// @Summary      List contact activities
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Contact ID"
// @Success      200  {object}  response.Response
// @Router       /api/contacts/{id}/activities [get]
func (h *ContactHandler) ListActivities(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid contact id"))
		return
	}

	activities, err := h.activityService.ListByContact(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, activities))
}
