package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fisiocal/internal/domain"
)

func (h *Handler) createSeries(c *gin.Context) {
	var input domain.CreateRecurrenceTemplateDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	template, inserted, err := h.services.Series.Create(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"template":             template,
		"appointments_created": inserted,
	})
}

func (h *Handler) getSeries(c *gin.Context) {
	filter := domain.RecurrenceTemplateFilter{
		ActiveOnly: c.Query("active_only") == "true",
	}
	filter.Limit, filter.Offset = parsePagination(c)

	if raw := c.Query("patient_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequestResponse(c, "invalid patient_id")
			return
		}
		filter.PatientID = &id
	}
	if raw := c.Query("therapist_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequestResponse(c, "invalid therapist_id")
			return
		}
		filter.TherapistID = &id
	}

	templates, err := h.services.Series.List(c.Request.Context(), filter)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, templates)
}

func (h *Handler) getSeriesByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequestResponse(c, "invalid series id")
		return
	}

	template, err := h.services.Series.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "series not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, template)
}

// deleteSeriesFromDate removes the occurrences of a series starting at the
// given date while keeping everything before it untouched.
func (h *Handler) deleteSeriesFromDate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequestResponse(c, "invalid series id")
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		badRequestResponse(c, "from must be a date in YYYY-MM-DD format")
		return
	}

	removed, err := h.services.Series.DeleteFromDate(c.Request.Context(), id, from)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "series not found")
			return
		}
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"appointments_removed": removed,
	})
}

func (h *Handler) deactivateSeries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequestResponse(c, "invalid series id")
		return
	}

	if err := h.services.Series.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "series not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	messageResponse(c, http.StatusOK, "series deactivated")
}

func (h *Handler) deleteOccurrence(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid appointment id")
		return
	}

	if err := h.services.Series.DeleteOccurrence(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "appointment not found")
			return
		}
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	noContentResponse(c)
}
