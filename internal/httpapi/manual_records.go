package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/balkashynov/studytrack/internal/tracking"
)

// manualRecordRequest is shared by create and update; userId is ignored on update
type manualRecordRequest struct {
	UserID      uint    `json:"userId"`
	SubjectID   uint    `json:"subjectId" binding:"required"`
	StudyDate   string  `json:"studyDate" binding:"required"`
	StartTime   string  `json:"startTime" binding:"required"`
	EndTime     string  `json:"endTime" binding:"required"`
	Description *string `json:"description"`
}

func (r manualRecordRequest) input() tracking.ManualRecordInput {
	return tracking.ManualRecordInput{
		UserID:      r.UserID,
		SubjectID:   r.SubjectID,
		StudyDate:   r.StudyDate,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Description: r.Description,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) CreateManualRecord(c *gin.Context) {
	var req manualRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rec, err := h.svc.CreateManualRecord(c.Request.Context(), req.input())
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondCreated(c, rec)
}

func (h *Handler) GetManualRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	rec, err := h.svc.ManualRecord(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, rec)
}

func (h *Handler) UpdateManualRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req manualRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rec, err := h.svc.UpdateManualRecord(c.Request.Context(), id, req.input())
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, rec)
}

func (h *Handler) DeleteManualRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteManualRecord(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, messageResponse{Message: "manual record deleted"})
}
