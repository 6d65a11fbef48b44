package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fisiocal/internal/domain"
)

func (h *Handler) createTherapist(c *gin.Context) {
	var input domain.CreateTherapistDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	id, err := h.services.Therapist.Create(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

func (h *Handler) getTherapists(c *gin.Context) {
	limit, offset := parsePagination(c)

	therapists, err := h.services.Therapist.List(c.Request.Context(), limit, offset)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, therapists)
}

func (h *Handler) getTherapistByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid therapist id")
		return
	}

	therapist, err := h.services.Therapist.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "therapist not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, therapist)
}

func (h *Handler) getMyTherapistProfile(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	therapist, err := h.services.Therapist.GetByUserID(c.Request.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "therapist profile not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, therapist)
}

func (h *Handler) updateTherapist(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid therapist id")
		return
	}

	var input domain.UpdateTherapistDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "malformed request body")
		return
	}

	if err := h.services.Therapist.Update(c.Request.Context(), id, input); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "therapist not found")
			return
		}
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "therapist updated")
}

func (h *Handler) deleteTherapist(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		badRequestResponse(c, "invalid therapist id")
		return
	}

	if err := h.services.Therapist.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "therapist not found")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	noContentResponse(c)
}
