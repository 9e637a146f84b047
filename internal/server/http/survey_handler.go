package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yoxo/internal/assessment"
	"yoxo/internal/logging"
)

// SurveyHandler serves the one-shot submission, result lookup and dashboard
// endpoints.
type SurveyHandler struct {
	service *assessment.Service
	logger  logging.Logger
}

// NewSurveyHandler creates a survey handler backed by the given service.
func NewSurveyHandler(service *assessment.Service) *SurveyHandler {
	return &SurveyHandler{
		service: service,
		logger:  logging.NewComponentLogger("SurveyHandler"),
	}
}

type submitSurveyRequest struct {
	Responses     []int  `json:"responses" binding:"required"`
	RespondentRef string `json:"respondentRef"`
}

type resultResponse struct {
	PublicID  string              `json:"publicId"`
	Scores    assessment.ScoreSet `json:"scores"`
	Advice    string              `json:"advice,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// SubmitSurvey accepts all 16 answers at once, in prompt order.
func (h *SurveyHandler) SubmitSurvey(c *gin.Context) {
	var req submitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body", err))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), assessment.SubmitInput{
		Responses:     req.Responses,
		RespondentRef: req.RespondentRef,
	})
	if err != nil {
		if errors.Is(err, assessment.ErrInvalidAssessmentInput) || errors.Is(err, assessment.ErrInvalidAnswer) {
			c.JSON(http.StatusBadRequest, errorResponse("invalid survey responses", err))
			return
		}
		h.logger.Error("Submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("failed to store assessment", nil))
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResults returns the stored scores and advice for a public identifier.
func (h *SurveyHandler) GetResults(c *gin.Context) {
	publicID := c.Param("publicId")

	a, err := h.service.Result(c.Request.Context(), publicID)
	if err != nil {
		if errors.Is(err, assessment.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("assessment not found", nil))
			return
		}
		h.logger.Error("Result lookup for %s failed: %v", publicID, err)
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load assessment", nil))
		return
	}

	c.JSON(http.StatusOK, resultResponse{
		PublicID:  a.PublicID,
		Scores:    a.Scores,
		Advice:    a.Advice,
		CreatedAt: a.CreatedAt,
	})
}

// GetDashboard returns recent history and aggregate stats for a respondent.
func (h *SurveyHandler) GetDashboard(c *gin.Context) {
	respondent := c.Query("respondent")
	if respondent == "" {
		c.JSON(http.StatusBadRequest, errorResponse("respondent query parameter is required", nil))
		return
	}

	data, err := h.service.Dashboard(c.Request.Context(), respondent)
	if err != nil {
		h.logger.Error("Dashboard for %s failed: %v", respondent, err)
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load dashboard", nil))
		return
	}

	c.JSON(http.StatusOK, data)
}
