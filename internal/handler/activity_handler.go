package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	activities := router.Group("/api/activities")
	{
		activities.POST("", h.CreateActivity)
		activities.DELETE("/:id", h.DeleteActivity)
	}
}

// CreateActivity logs a call, email, or meeting against a contact
// @Summary      Create activity
// @Tags         activities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateActivityRequest  true  "Activity payload"
// @Success      201  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/activities [post]
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req service.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	activity, err := h.activityService.CreateActivity(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, activity))
}

// DeleteActivity deletes an activity
// @Summary      Delete activity
// @Tags         activities
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Activity ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/activities/{id} [delete]
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid activity id"))
		return
	}

	if err := h.activityService.DeleteActivity(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Activity deleted successfully"}))
}
