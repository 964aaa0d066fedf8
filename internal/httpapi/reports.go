package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/balkashynov/studytrack/internal/tracking"
)

type historyQuery struct {
	UserID    uint   `form:"userId" binding:"required"`
	SubjectID *uint  `form:"subjectId"`
	From      string `form:"from"`
	To        string `form:"to"`
}

type statisticsQuery struct {
	UserID    uint   `form:"userId" binding:"required"`
	SubjectID *uint  `form:"subjectId"`
	From      string `form:"from" binding:"required"`
	To        string `form:"to" binding:"required"`
}

func (h *Handler) History(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	items, err := h.svc.History(c.Request.Context(), tracking.HistoryQuery{
		UserID:    q.UserID,
		SubjectID: q.SubjectID,
		From:      q.From,
		To:        q.To,
	})
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, items)
}

func (h *Handler) Statistics(c *gin.Context) {
	var q statisticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	stats, err := h.svc.Statistics(c.Request.Context(), tracking.StatisticsQuery{
		UserID:    q.UserID,
		SubjectID: q.SubjectID,
		From:      q.From,
		To:        q.To,
	})
	if err != nil {
		h.respondServiceError(c, err, nil)
		return
	}
	RespondOK(c, stats)
}
