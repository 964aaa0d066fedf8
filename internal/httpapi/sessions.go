package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/studytrack/internal/tracking"
)

var (
	errInvalidID     = errors.New("id must be a positive integer")
	errRouteNotFound = errors.New("route not found")
)

type startSessionRequest struct {
	UserID    uint `json:"userId" binding:"required"`
	SubjectID uint `json:"subjectId" binding:"required"`
}

type editSessionRequest struct {
	Reason       string     `json:"reason" binding:"required"`
	NewEnd       *time.Time `json:"newEnd"`
	NewSubjectID *uint      `json:"newSubjectId"`
}

type userQuery struct {
	UserID uint `form:"userId" binding:"required"`
}

// pathID parses the :id parameter, answering 422 when it is not a positive integer
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		RespondError(c, http.StatusUnprocessableEntity, tracking.CodeValidation, errInvalidID, nil)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sess, err := h.svc.StartSession(c.Request.Context(), req.UserID, req.SubjectID)
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondCreated(c, sess)
}

func (h *Handler) ActiveSession(c *gin.Context) {
	var q userQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	sess, err := h.svc.ActiveSession(c.Request.Context(), q.UserID)
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, sess)
}

func (h *Handler) SessionDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.svc.SessionDetail(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, detail)
}

func (h *Handler) PauseSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sess, err := h.svc.PauseSession(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, sess)
}

// ResumeSession answers a pause timeout with 400 and the interrupted session as details
func (h *Handler) ResumeSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sess, err := h.svc.ResumeSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, tracking.ErrPauseTimeout) && sess != nil {
			h.respondServiceError(c, err, sess)
			return
		}
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, sess)
}

func (h *Handler) FinishSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sess, err := h.svc.FinishSession(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, sess)
}

func (h *Handler) EditSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req editSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sess, err := h.svc.EditCompletedSession(c.Request.Context(), tracking.EditSessionInput{
		SessionID:    id,
		Reason:       req.Reason,
		NewEnd:       req.NewEnd,
		NewSubjectID: req.NewSubjectID,
	})
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, sess)
}
