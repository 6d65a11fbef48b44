package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fisiocal/internal/service"
)

func (h *Handler) calendarView(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	var req service.ViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequestResponse(c, "invalid view parameters")
		return
	}

	view, err := h.services.Calendar.View(c.Request.Context(), actor, req)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	successResponse(c, http.StatusOK, view)
}

func (h *Handler) calendarNavigate(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	var req service.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	view, err := h.services.Calendar.Navigate(c.Request.Context(), actor, req)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	successResponse(c, http.StatusOK, view)
}

func (h *Handler) exportCalendar(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	var req service.ViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequestResponse(c, "invalid export parameters")
		return
	}

	ics, err := h.services.Calendar.ExportICS(c.Request.Context(), actor, req)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	fileName := fmt.Sprintf("agenda-%s.ics", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func (h *Handler) archiveCalendarExport(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	var req service.ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "malformed request body")
		return
	}

	url, err := h.services.Calendar.ArchiveExport(c.Request.Context(), actor, req)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"url": url,
	})
}
