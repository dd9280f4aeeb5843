package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mil05h/calories-ai/middlewares"
	"github.com/Mil05h/calories-ai/models"
	"github.com/Mil05h/calories-ai/services"
)

type AnalysisController struct {
	analysis *services.AnalysisService
	auth     *services.AuthService
}

func NewAnalysisController(analysis *services.AnalysisService, auth *services.AuthService) *AnalysisController {
	return &AnalysisController{analysis: analysis, auth: auth}
}

// Analyze handles POST /analyze: one request, one model call, one result.
func (ac *AnalysisController) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid-argument"})
		return
	}

	user, err := ac.auth.CurrentUser(c.GetString(middlewares.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := ac.analysis.Analyze(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
