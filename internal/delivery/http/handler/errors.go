package handler

import (
	"errors"
	"net/http"

	"storefront-identity/internal/domain/account"
	"storefront-identity/internal/domain/message"
	"storefront-identity/internal/logger"
	"storefront-identity/internal/middleware"
	appErrors "storefront-identity/pkg/errors"
	"storefront-identity/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInvalidBody    = "Invalid request body"
	msgInternalError  = "Internal server error"
	msgDispatchFailed = "Failed to send reset email"
)

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, account.ErrAccountExists):
		utils.ErrorResponse(c, http.StatusConflict, "User already exists")
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		utils.ErrorResponse(c, http.StatusUnauthorized, "Incorrect password")
	case errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, appErrors.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, "Admin access required")
	case errors.Is(err, account.ErrAccountNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "User not found")
	case errors.Is(err, message.ErrMessageNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Message not found")
	case errors.Is(err, account.ErrResetTokenInvalid):
		utils.ErrorResponse(c, http.StatusBadRequest, "Token invalid or expired")
	case errors.Is(err, appErrors.ErrRateLimited):
		utils.ErrorResponse(c, http.StatusTooManyRequests, "Too many reset requests, please try again later")
	case errors.Is(err, appErrors.ErrDispatchFailed):
		logInternal(c, "Reset email dispatch failed", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, msgDispatchFailed)
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) && appErr.Code == appErrors.CodeValidation {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		logInternal(c, "Internal server error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, msgInternalError)
	}
}

func logInternal(c *gin.Context, msg string, err error) {
	logger.Error(msg,
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
}
