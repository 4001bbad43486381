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

type NoteHandler struct {
	noteService service.NoteService
}

func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	notes := router.Group("/api/notes")
	{
		notes.GET("", h.ListNotes)
		notes.POST("", h.CreateNote)
		notes.GET("/:id", h.GetNote)
		notes.PUT("/:id", h.UpdateNote)
		notes.DELETE("/:id", h.DeleteNote)
	}
}

// ListNotes returns paginated notes, optionally scoped to one related record
// @Summary      List notes
// @Tags         notes
// @Security     BearerAuth
// @Produce      json
// @Param        page             query  int     false  "Page number (default: 1)"
// @Param        limit            query  int     false  "Items per page (default: 20)"
// @Param        related_to_type  query  string  false  "Filter by related type: contact, account, deal, lead"
// @Param        related_to_id    query  string  false  "Filter by related record id"
// @Success      200  {object}  response.Response
// @Router       /api/notes [get]
func (h *NoteHandler) ListNotes(c *gin.Context) {
	params := pagination.Parse(c)

	var relatedToID *uuid.UUID
	if raw := c.Query("related_to_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid related_to_id"))
			return
		}
		relatedToID = &id
	}

	notes, total, err := h.noteService.ListNotes(c.Request.Context(), c.Query("related_to_type"), relatedToID, params.Page, params.Limit)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, notes, params.Page, params.Limit, total))
}

// CreateNote attaches a note to a contact, account, deal, or lead
// @Summary      Create note
// @Tags         notes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateNoteRequest  true  "Note payload"
// @Success      201  {object}  response.Response
// @Router       /api/notes [post]
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req service.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	note, err := h.noteService.CreateNote(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, note))
}

// GetNote returns a single note
// @Summary      Get note
// @Tags         notes
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Note ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notes/{id} [get]
func (h *NoteHandler) GetNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid note id"))
		return
	}

	note, err := h.noteService.GetNote(c.Request.Context(), id)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, note))
}

// UpdateNote updates a note's content
// @Summary      Update note
// @Tags         notes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Note ID"
// @Param        payload  body  service.UpdateNoteRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notes/{id} [put]
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid note id"))
		return
	}

	var req service.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	note, err := h.noteService.UpdateNote(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, note))
}

// DeleteNote deletes a note
// @Summary      Delete note
// @Tags         notes
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Note ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid note id"))
		return
	}

	if err := h.noteService.DeleteNote(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Note deleted successfully"}))
}
