package handler

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/service"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PipelineHandler struct {
	pipelineService service.PipelineService
}

func NewPipelineHandler(pipelineService service.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipelineService: pipelineService}
}

func (h *PipelineHandler) RegisterRoutes(router *gin.RouterGroup) {
	pipelines := router.Group("/api/pipelines")
	{
		pipelines.GET("", h.ListPipelines)
		pipelines.POST("", h.CreatePipeline)
		pipelines.GET("/:id", h.GetPipeline)
		pipelines.PUT("/:id", h.UpdatePipeline)
		pipelines.DELETE("/:id", h.DeletePipeline)
		pipelines.POST("/:id/set-default", h.SetDefault)

		pipelines.GET("/:id/stages", h.ListStages)
		pipelines.POST("/:id/stages", h.CreateStage)
		pipelines.PUT("/:id/stages/:stageId", h.UpdateStage)
		pipelines.DELETE("/:id/stages/:stageId", h.DeleteStage)
		pipelines.PUT("/:id/stages/reorder", h.ReorderStages)
	}
}

// ListPipelines returns all pipelines with their stages
// @Summary      List pipelines
// @Tags         pipelines
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/pipelines [get]
func (h *PipelineHandler) ListPipelines(c *gin.Context) {
	pipelines, err := h.pipelineService.ListPipelines(c.Request.Context())
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pipelines))
}

// CreatePipeline creates a new pipeline
// @Summary      Create pipeline
// @Tags         pipelines
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreatePipelineRequest  true  "Pipeline payload"
// @Success      201  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/pipelines [post]
func (h *PipelineHandler) CreatePipeline(c *gin.Context) {
	var req service.CreatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pipeline, err := h.pipelineService.CreatePipeline(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pipeline))
}

// GetPipeline returns a single pipeline with stages
// @Summary      Get pipeline
// @Tags         pipelines
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Pipeline ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pipelines/{id} [get]
func (h *PipelineHandler) GetPipeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}

	pipeline, err := h.pipelineService.GetPipeline(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pipeline))
}

// UpdatePipeline updates name and default flag
// @Summary      Update pipeline
// @Tags         pipelines
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Pipeline ID"
// @Param        payload  body  service.UpdatePipelineRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pipelines/{id} [put]
func (h *PipelineHandler) UpdatePipeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}

	var req service.UpdatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pipeline, err := h.pipelineService.UpdatePipeline(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pipeline))
}

// SetDefault flags the pipeline as the single default
// @Summary      Set default pipeline
// @Tags         pipelines
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Pipeline ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pipelines/{id}/set-default [post]
func (h *PipelineHandler) SetDefault(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}

	pipeline, err := h.pipelineService.SetDefault(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pipeline))
}

// DeletePipeline deletes a pipeline and its stages
// @Summary      Delete pipeline
// @Tags         pipelines
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Pipeline ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pipelines/{id} [delete]
func (h *PipelineHandler) DeletePipeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}

	if err := h.pipelineService.DeletePipeline(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Pipeline deleted successfully"}))
}

// ListStages returns the pipeline's stages ordered by position
// @Summary      List stages
// @Tags         pipelines
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Pipeline ID"
// @Success      200  {object}  response.Response
// @Router       /api/pipelines/{id}/stages [get]
func (h *PipelineHandler) ListStages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}

	stages, err := h.pipelineService.ListStages(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stages))
}

// CreateStage appends a stage to the pipeline
// @Summary      Create stage
// @Tags         pipelines
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Pipeline ID"
// @Param        payload  body  service.CreateStageRequest  true  "Stage payload"
// @Success      201  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pipelines/{id}/stages [post]
func (h *PipelineHandler) CreateStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}

	var req service.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	stage, err := h.pipelineService.CreateStage(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, stage))
}

// UpdateStage updates a stage within its pipeline
// @Summary      Update stage
// @Tags         pipelines
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Pipeline ID"
// @Param        stageId  path  string                      true  "Stage ID"
// @Param        payload  body  service.UpdateStageRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pipelines/{id}/stages/{stageId} [put]
func (h *PipelineHandler) UpdateStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}
	stageID, err := uuid.Parse(c.Param("stageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid stage id"))
		return
	}

	var req service.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	stage, err := h.pipelineService.UpdateStage(c.Request.Context(), middleware.CurrentUser(c), id, stageID, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stage))
}

// DeleteStage removes a stage from its pipeline
// @Summary      Delete stage
// @Tags         pipelines
// @Security     BearerAuth
// @Produce      json
// @Param        id       path  string  true  "Pipeline ID"
// @Param        stageId  path  string  true  "Stage ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/pipelines/{id}/stages/{stageId} [delete]
func (h *PipelineHandler) DeleteStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}
	stageID, err := uuid.Parse(c.Param("stageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid stage id"))
		return
	}

	if err := h.pipelineService.DeleteStage(c.Request.Context(), middleware.CurrentUser(c), id, stageID); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Stage deleted successfully"}))
}

type reorderStagesRequest struct {
	StageIDs []uuid.UUID `json:"stage_ids" binding:"required"`
}

// ReorderStages rewrites stage positions to match the submitted order
// @Summary      Reorder stages
// @Tags         pipelines
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Pipeline ID"
// @Param        payload  body  reorderStagesRequest  true  "Ordered stage ids"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/pipelines/{id}/stages/reorder [put]
func (h *PipelineHandler) ReorderStages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid pipeline id"))
		return
	}

	var req reorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.pipelineService.ReorderStages(c.Request.Context(), middleware.CurrentUser(c), id, req.StageIDs); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Stages reordered successfully"}))
}
