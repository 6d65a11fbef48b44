package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fisiocal/internal/domain"
)

func (h *Handler) register(c *gin.Context) {
	var input domain.RegisterRequest

	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	id, err := h.services.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("registration failed", zap.Error(err))
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

func (h *Handler) login(c *gin.Context) {
	var input domain.LoginRequest

	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	tokens, err := h.services.Auth.Login(c.Request.Context(), input, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	successResponse(c, http.StatusOK, tokens)
}

func (h *Handler) refreshTokens(c *gin.Context) {
	var input domain.RefreshTokenRequest

	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "malformed request body")
		return
	}

	tokens, err := h.services.Auth.RefreshTokens(c.Request.Context(), input.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	successResponse(c, http.StatusOK, tokens)
}

func (h *Handler) logout(c *gin.Context) {
	var input domain.RefreshTokenRequest

	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "malformed request body")
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), input.RefreshToken); err != nil {
		internalServerErrorResponse(c)
		return
	}

	messageResponse(c, http.StatusOK, "logged out")
}
