package handlers

import (
	"net/http"

	"realty_backend/internal/middleware"
	"realty_backend/internal/services"
	"realty_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the support-chat REST surface. Live delivery rides on
// the websocket endpoint; this surface is the source of truth.
type ChatHandler struct {
	*BaseHandler
	chatService *services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	conv := r.Group("/conversations")
	conv.Use(middleware.AuthMiddleware())
	{
		conv.POST("", h.Start)
		conv.GET("", h.ListMine)
		conv.GET("/:id/messages", h.Messages)
		conv.POST("/:id/messages", h.Send)
		conv.POST("/:id/close", h.Close)
	}

	admin := r.Group("/admin/conversations")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.GET("/unassigned", h.ListUnassigned)
	}
}

func (h *ChatHandler) Start(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.StartConversationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	conv, err := h.chatService.Start(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "conversation": conv})
}

func (h *ChatHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	convs, total, err := h.chatService.ListMine(c.Request.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"conversations": convs,
		"total":         total,
	})
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	resp, err := h.chatService.Messages(c.Request.Context(), userID, h.CallerRole(c), c.Param("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), userID, h.CallerRole(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

func (h *ChatHandler) Close(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.chatService.Close(c.Request.Context(), userID, h.CallerRole(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ChatHandler) ListUnassigned(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	convs, total, err := h.chatService.ListUnassigned(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"conversations": convs,
		"total":         total,
	})
}
