package handler

import (
	"net/http"

	"crm-backend/internal/service"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchService service.SearchService
}

func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/search", h.GlobalSearch)
}

// GlobalSearch matches one query against leads, contacts, accounts, and
// deals, returning up to five typed hits per entity
// @Summary      Global search
// @Tags         search
// @Security     BearerAuth
// @Produce      json
// @Param        q  query     string  true  "Search term"
// @Success      200  {object}  response.Response{data=[]service.SearchHit}
// @Failure      400  {object}  response.Response
// @Router       /api/search [get]
func (h *SearchHandler) GlobalSearch(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Query parameter q is required"))
		return
	}

	hits, err := h.searchService.GlobalSearch(c.Request.Context(), q)
	if err != nil {
		response.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, hits))
}
