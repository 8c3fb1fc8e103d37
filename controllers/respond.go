package controllers

import (
	"net/http"

	"backend/logger"
	"backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusForStage(stage services.Stage) int {
	switch stage {
	case services.StagePayloadParsing, services.StageValidation:
		return http.StatusBadRequest
	case services.StageAuthentication:
		return http.StatusUnauthorized
	case services.StageNotFound:
		return http.StatusNotFound
	case services.StageConflict:
		return http.StatusConflict
	case services.StageExtraction:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError emits the caller-safe rejection shape. The full error chain
// goes to the log, correlated by request id; it never reaches the wire.
func respondError(c *gin.Context, err error) {
	stage := services.StageOf(err)
	requestID := c.GetString("requestID")
	logger.Error("request rejected",
		zap.String("request_id", requestID),
		zap.String("stage", string(stage)),
		zap.Error(err))
	c.JSON(statusForStage(stage), gin.H{
		"success":    false,
		"stage":      stage,
		"error":      services.CallerMessage(err),
		"request_id": requestID,
	})
}
