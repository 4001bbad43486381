package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/service"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OwnershipHandler exposes the assign endpoint on each ownable resource.
type OwnershipHandler struct {
	ownershipService service.OwnershipService
}

func NewOwnershipHandler(ownershipService service.OwnershipService) *OwnershipHandler {
	return &OwnershipHandler{ownershipService: ownershipService}
}

func (h *OwnershipHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.PUT("/api/accounts/:id/assign", h.assign(model.RelatedToAccount))
	router.PUT("/api/contacts/:id/assign", h.assign(model.RelatedToContact))
	router.PUT("/api/deals/:id/assign", h.assign(model.RelatedToDeal))
	router.PUT("/api/leads/:id/assign", h.assign(model.RelatedToLead))
}

type assignOwnerRequest struct {
	OwnerID uuid.UUID `json:"owner_id" binding:"required"`
}

// AssignOwner reassigns the record's owner and records an audit note
// @Summary      Reassign owner
// @Tags         ownership
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string              true  "Record ID"
// @Param        payload  body  assignOwnerRequest  true  "New owner"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals/{id}/assign [put]
func (h *OwnershipHandler) assign(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
			return
		}

		var req assignOwnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}

		if err := h.ownershipService.ReassignOwner(c.Request.Context(), middleware.CurrentUser(c), entityType, id, req.OwnerID); err != nil {
			response.AbortError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Owner reassigned successfully"}))
	}
}
