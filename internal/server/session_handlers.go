package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

type placeRequest struct {
	Course string `json:"course" binding:"required"`
	Term   int    `json:"term" binding:"required"`
}

type removeRequest struct {
	Course string `json:"course" binding:"required"`
}

type chooseRequest struct {
	Group  string `json:"group" binding:"required"`
	Course string `json:"course" binding:"required"`
}

type selectionRequest struct {
	Programs []string `json:"programs"`
	Domains  []string `json:"domains"`
	Emphasis string   `json:"emphasis"`
}

func (server *Server) listSessions(c *gin.Context) {
	ids, err := server.manager.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": ids})
}

func (server *Server) createSession(c *gin.Context) {
	var selection planner.Selection
	if err := c.ShouldBindJSON(&selection); err != nil {
		badRequest(c, err)
		return
	}

	_, view, err := server.manager.Create(c.Request.Context(), selection)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (server *Server) getSession(c *gin.Context) {
	session, err := server.manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	if !session.Resolved() {
		view, err := session.Refresh(c.Request.Context())
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

func (server *Server) deleteSession(c *gin.Context) {
	if err := server.manager.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (server *Server) setSelection(c *gin.Context) {
	var request selectionRequest
	if !server.bind(c, &request) {
		return
	}
	server.mutate(c, func(session *planner.Session) (planner.View, error) {
		return session.SetSelection(c.Request.Context(), request.Programs, request.Domains, request.Emphasis)
	})
}

func (server *Server) place(c *gin.Context) {
	var request placeRequest
	if !server.bind(c, &request) {
		return
	}
	server.mutate(c, func(session *planner.Session) (planner.View, error) {
		return session.Place(c.Request.Context(), request.Course, request.Term)
	})
}

func (server *Server) remove(c *gin.Context) {
	var request removeRequest
	if !server.bind(c, &request) {
		return
	}
	server.mutate(c, func(session *planner.Session) (planner.View, error) {
		return session.Remove(c.Request.Context(), request.Course)
	})
}

func (server *Server) addTerm(c *gin.Context) {
	server.mutate(c, func(session *planner.Session) (planner.View, error) {
		return session.AddTerm(c.Request.Context())
	})
}

func (server *Server) removeTerm(c *gin.Context) {
	term, err := strconv.Atoi(c.Param("term"))
	if err != nil {
		handleError(c, fmt.Errorf("%w: %s", planner.ErrInvalidTerm, c.Param("term")))
		return
	}
	server.mutate(c, func(session *planner.Session) (planner.View, error) {
		return session.RemoveTerm(c.Request.Context(), term)
	})
}

func (server *Server) choose(c *gin.Context) {
	var request chooseRequest
	if !server.bind(c, &request) {
		return
	}
	server.mutate(c, func(session *planner.Session) (planner.View, error) {
		return session.ChooseGroupOption(c.Request.Context(), request.Group, request.Course)
	})
}

func (server *Server) sessionGroupOptions(c *gin.Context) {
	session, err := server.manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	options, err := session.GroupOptions(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (server *Server) bind(c *gin.Context, request any) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

func (server *Server) mutate(c *gin.Context, apply func(*planner.Session) (planner.View, error)) {
	session, err := server.manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	view, err := apply(session)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
