package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

func (server *Server) listCourses(c *gin.Context) {
	c.JSON(http.StatusOK, server.catalog.Catalog().SortedCourses())
}

func (server *Server) listGroups(c *gin.Context) {
	groups, err := server.catalog.Groups(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (server *Server) listPrograms(c *gin.Context) {
	c.JSON(http.StatusOK, server.catalog.Catalog().ProgramNames())
}

func (server *Server) listDomains(c *gin.Context) {
	c.JSON(http.StatusOK, server.catalog.Catalog().DomainNames())
}

func (server *Server) requirements(c *gin.Context) {
	var request catalog.RequirementsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	response, err := server.catalog.Requirements(c.Request.Context(), request)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (server *Server) groupOptions(c *gin.Context) {
	var request planner.GroupOptionsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	options, err := server.catalog.GroupOptions(c.Request.Context(), c.Param("code"), request.Taken)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (server *Server) suggestions(c *gin.Context) {
	var request catalog.RequirementsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	suggestions, err := server.catalog.SuggestResolutions(c.Request.Context(), request)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
