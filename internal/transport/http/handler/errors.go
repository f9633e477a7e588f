package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid credentials"
	errEmailTaken         = "Email already registered"
	errUserNotFound       = "User not found"
	errABHANotFound       = "ABHA record not found"
	errABHAFailed         = "Failed to fetch ABHA data"
	errTimeout            = "Request timed out"
)

// respondError maps a usecase error onto a status code and a stable message.
// Only validation errors echo their detail; anything unexpected is logged and
// reported without internals.
func respondError(ctx *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
	case errors.Is(err, domain.ErrEmailTaken):
		ctx.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
	case errors.Is(err, domain.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrABHANotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errABHANotFound})
	case errors.Is(err, domain.ErrTimeout):
		logger.WarnContext(ctx.Request.Context(), op, "error", err)
		ctx.JSON(http.StatusGatewayTimeout, gin.H{"error": errTimeout})
	case errors.Is(err, domain.ErrUpstream):
		logger.WarnContext(ctx.Request.Context(), op, "error", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": errABHAFailed})
	default:
		logger.ErrorContext(ctx.Request.Context(), op, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
