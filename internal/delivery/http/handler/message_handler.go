package handler

import (
	"net/http"

	"storefront-identity/internal/usecase/message"
	"storefront-identity/pkg/utils"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *message.Service
}

func NewMessageHandler(service *message.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("", h.Create)
}

func (h *MessageHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.PUT("/:id/read", h.MarkAsRead)
}

func (h *MessageHandler) Create(c *gin.Context) {
	var req message.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	msg, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Message sent", msg)
}

func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.service.List(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", messages)
}

func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	msg, err := h.service.MarkAsRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Message marked as read", msg)
}
