package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/geoqa/pkg/common/errors"
	"github.com/duynguyendang/geoqa/pkg/service"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

type askRequest struct {
	Question string `json:"question" form:"q"`
}

// handleAsk answers one question. The question comes from the JSON body on
// POST and from the q parameter on GET. Unrecognized questions and empty
// results are answers and return 200.
func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing question", errors.ErrInvalidInput))
		return
	}

	answer, err := s.qa.Ask(c.Request.Context(), req.Question)
	if service.IsFailure(err) {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// handleStats returns aggregate counts over the ontology.
func (s *Server) handleStats(c *gin.Context) {
	sum, err := s.qa.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// handleSchema lists the ontology relations.
func (s *Server) handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"relations": vocab.Schema})
}

// handleReload reloads the ontology file.
func (s *Server) handleReload(c *gin.Context) {
	n, err := s.manager.Load(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"triples": n, "ontology": s.manager.Info()})
}

func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
