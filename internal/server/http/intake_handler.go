package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"yoxo/internal/assessment"
	"yoxo/internal/intake"
	"yoxo/internal/logging"
	"yoxo/internal/questionnaire"
)

// IntakeHandler serves the stepwise questionnaire flow. Sessions live in
// memory keyed by token; a completed session feeds the same submission
// pipeline as /api/submit-survey.
type IntakeHandler struct {
	sessions *intake.Store
	service  *assessment.Service
	logger   logging.Logger
}

// NewIntakeHandler creates an intake handler over the session store and the
// submission service.
func NewIntakeHandler(sessions *intake.Store, service *assessment.Service) *IntakeHandler {
	return &IntakeHandler{
		sessions: sessions,
		service:  service,
		logger:   logging.NewComponentLogger("IntakeHandler"),
	}
}

type startSessionRequest struct {
	RespondentRef string `json:"respondentRef"`
}

type submitAnswerRequest struct {
	// Value is a pointer so a missing field is distinguishable from 0.
	Value *int `json:"value" binding:"required"`
}

type commitSectionRequest struct {
	Section *int  `json:"section" binding:"required"`
	Answers []int `json:"answers" binding:"required"`
}

// sessionResponse reports intake progress after the session is created or
// advanced. Result is set only once the final answer completes the session
// and the submission has been persisted.
type sessionResponse struct {
	Token    string                   `json:"token"`
	Section  int                      `json:"section"`
	Question int                      `json:"question"`
	Answered int                      `json:"answered"`
	Total    int                      `json:"total"`
	Complete bool                     `json:"complete"`
	State    string                   `json:"state,omitempty"`
	Result   *assessment.SubmitResult `json:"result,omitempty"`
}

func newSessionResponse(s *intake.Session) sessionResponse {
	p := s.Progress()
	return sessionResponse{
		Token:    p.Token,
		Section:  p.Section,
		Question: p.Question,
		Answered: p.Answered,
		Total:    questionnaire.TotalPrompts(),
		Complete: p.Complete,
	}
}

func eventState(ev intake.Event) string {
	switch ev {
	case intake.EventSectionComplete:
		return "section_complete"
	case intake.EventAllComplete:
		return "all_complete"
	case intake.EventAlreadyCommitted:
		return "already_committed"
	default:
		return "in_section"
	}
}

// StartSession opens a new intake session and returns its token along with
// the question catalog, so a client needs no second round trip to render the
// first section.
func (h *IntakeHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body", err))
		return
	}

	session := intake.Start(req.RespondentRef)
	h.sessions.Put(session)
	h.logger.Debug("Intake session %s started", session.Token)

	resp := struct {
		sessionResponse
		Sections []questionnaire.Section `json:"sections"`
	}{
		sessionResponse: newSessionResponse(session),
		Sections:        questionnaire.Sections(),
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSession returns the progress of an existing session, the reload path.
func (h *IntakeHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("intake session not found", nil))
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// SubmitAnswer records a single answer. When it was the last one, the full
// sequence is scored and persisted before the session is discarded.
func (h *IntakeHandler) SubmitAnswer(c *gin.Context) {
	token := c.Param("token")
	session, err := h.sessions.Get(token)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("intake session not found", nil))
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body", err))
		return
	}

	ev, err := session.SubmitAnswer(*req.Value)
	if err != nil {
		// A complete session still in the store means an earlier persist
		// failed; another answer for it is a retry of that persist.
		if errors.Is(err, intake.ErrSessionComplete) {
			h.submitComplete(c, session)
			return
		}
		h.respondIntakeError(c, err)
		return
	}

	h.finishStep(c, session, ev)
}

// CommitSection records a whole section at once. Duplicate commits of an
// already-finished section are acknowledged without effect.
func (h *IntakeHandler) CommitSection(c *gin.Context) {
	token := c.Param("token")
	session, err := h.sessions.Get(token)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("intake session not found", nil))
		return
	}

	var req commitSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body", err))
		return
	}

	ev, err := session.CommitSection(*req.Section, req.Answers)
	if err != nil {
		h.respondIntakeError(c, err)
		return
	}

	h.finishStep(c, session, ev)
}

// finishStep refreshes the stored session and, on completion, runs the
// submission pipeline.
func (h *IntakeHandler) finishStep(c *gin.Context, session *intake.Session, ev intake.Event) {
	// A complete session still in the store means an earlier persist failed;
	// a duplicate final commit is then a retry, not a no-op.
	if ev == intake.EventAlreadyCommitted && session.Complete() {
		ev = intake.EventAllComplete
	}

	if ev != intake.EventAllComplete {
		h.sessions.Put(session)
		resp := newSessionResponse(session)
		resp.State = eventState(ev)
		c.JSON(http.StatusOK, resp)
		return
	}

	h.submitComplete(c, session)
}

// submitComplete persists a completed session's answer sequence. The session
// is deleted only after a successful persist so a failed submission can be
// retried; the in-flight mark keeps concurrent completion requests from
// persisting the same sequence twice.
func (h *IntakeHandler) submitComplete(c *gin.Context, session *intake.Session) {
	if !session.TryBeginSubmission() {
		c.JSON(http.StatusConflict, errorResponse("submission already in progress", nil))
		return
	}

	responses, err := session.Responses()
	if err != nil {
		session.EndSubmission()
		c.JSON(http.StatusInternalServerError, errorResponse("failed to assemble responses", nil))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), assessment.SubmitInput{
		Responses:     responses,
		RespondentRef: session.RespondentRef,
	})
	if err != nil {
		h.logger.Error("Submission for intake session %s failed: %v", session.Token, err)
		session.EndSubmission()
		h.sessions.Put(session)
		c.JSON(http.StatusInternalServerError, errorResponse("failed to store assessment", nil))
		return
	}

	h.sessions.Delete(session.Token)
	resp := newSessionResponse(session)
	resp.State = eventState(intake.EventAllComplete)
	resp.Result = result
	c.JSON(http.StatusOK, resp)
}

func (h *IntakeHandler) respondIntakeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assessment.ErrInvalidAnswer),
		errors.Is(err, assessment.ErrInvalidAssessmentInput):
		c.JSON(http.StatusBadRequest, errorResponse("invalid answer", err))
	case errors.Is(err, intake.ErrSessionComplete),
		errors.Is(err, intake.ErrSectionMismatch):
		c.JSON(http.StatusConflict, errorResponse("session state conflict", err))
	default:
		h.logger.Error("Intake step failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("intake step failed", nil))
	}
}
