package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fisiocal/internal/domain"
)

func (h *Handler) createPatient(c *gin.Context) {
	var input domain.CreatePatientDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	id, err := h.services.Patient.Create(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

func (h *Handler) getPatients(c *gin.Context) {
	limit, offset := parsePagination(c)

	patients, err := h.services.Patient.List(c.Request.Context(), limit, offset)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, patients)
}

func (h *Handler) getPatientByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid patient id")
		return
	}

	patient, err := h.services.Patient.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "patient not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, patient)
}

func (h *Handler) getMyPatientProfile(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	patient, err := h.services.Patient.GetByUserID(c.Request.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "patient profile not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, patient)
}

func (h *Handler) updatePatient(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid patient id")
		return
	}

	var input domain.UpdatePatientDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "malformed request body")
		return
	}

	if err := h.services.Patient.Update(c.Request.Context(), id, input); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "patient not found")
			return
		}
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "patient updated")
}

func (h *Handler) deletePatient(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid patient id")
		return
	}

	if err := h.services.Patient.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "patient not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	noContentResponse(c)
}

func parsePagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
