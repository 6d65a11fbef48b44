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
	"fisiocal/internal/service"
)

func (h *Handler) createAppointment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	id, err := h.services.Appointment.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

func (h *Handler) getAppointments(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	filter, page, pageSize, err := parseAppointmentFilter(c)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), actor, filter)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	paginatedSuccessResponse(c, appointments, total, page, pageSize)
}

func (h *Handler) getAppointmentByID(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid appointment id")
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

func (h *Handler) rescheduleAppointment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid appointment id")
		return
	}

	var input domain.RescheduleDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	appointment, err := h.services.Appointment.Reschedule(c.Request.Context(), actor, id, input)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

func (h *Handler) transitionAppointment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid appointment id")
		return
	}

	var input domain.TransitionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	appointment, err := h.services.Appointment.Transition(c.Request.Context(), actor, id, input)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

func (h *Handler) markAppointmentPaid(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid appointment id")
		return
	}

	var input domain.PaymentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "malformed request body")
		return
	}

	appointment, err := h.services.Appointment.MarkPaid(c.Request.Context(), actor, id, input)
	if err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

func (h *Handler) cancelAppointment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid appointment id")
		return
	}

	version, err := strconv.ParseInt(c.Query("version"), 10, 64)
	if err != nil || version < 1 {
		badRequestResponse(c, "version query parameter is required")
		return
	}

	if _, err := h.services.Appointment.Cancel(c.Request.Context(), actor, id, version); err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	noContentResponse(c)
}

// deleteAppointment removes the record entirely. Cancellation is the
// normal path; this exists for cleaning up bad data.
func (h *Handler) deleteAppointment(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid appointment id")
		return
	}

	if err := h.services.Appointment.Delete(c.Request.Context(), id); err != nil {
		h.respondAppointmentError(c, err)
		return
	}

	noContentResponse(c)
}

func (h *Handler) respondAppointmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		notFoundResponse(c, "appointment not found")
	case errors.Is(err, domain.ErrConflict):
		conflictResponse(c, "appointment was modified by someone else, reload and retry")
	case errors.Is(err, service.ErrForbidden):
		forbiddenResponse(c)
	default:
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
	}
}

func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func parseAppointmentFilter(c *gin.Context) (domain.AppointmentFilter, int, int, error) {
	var filter domain.AppointmentFilter

	if raw := c.Query("patient_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, 0, 0, errors.New("invalid patient_id")
		}
		filter.PatientID = &id
	}

	if raw := c.Query("therapist_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, 0, 0, errors.New("invalid therapist_id")
		}
		filter.TherapistID = &id
	}

	if raw := c.Query("series_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, 0, 0, errors.New("invalid series_id")
		}
		filter.SeriesID = &id
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.AppointmentStatus(raw)
		filter.Status = &status
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, 0, 0, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		filter.StartDate = &from
	}

	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, 0, 0, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		filter.EndDate = &to
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	return filter, page, pageSize, nil
}
