package handlers

import (
	"net/http"

	"realty_backend/internal/middleware"
	"realty_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SavedListingHandler struct {
	*BaseHandler
	savedService *services.SavedListingService
}

func NewSavedListingHandler(base *BaseHandler, savedService *services.SavedListingService) *SavedListingHandler {
	return &SavedListingHandler{
		BaseHandler:  base,
		savedService: savedService,
	}
}

func (h *SavedListingHandler) RegisterRoutes(r *gin.RouterGroup) {
	saved := r.Group("/saved")
	saved.Use(middleware.AuthMiddleware())
	{
		saved.GET("", h.List)
		saved.POST("/:listingId", h.Save)
		saved.DELETE("/:listingId", h.Remove)
		saved.GET("/:listingId", h.IsSaved)
	}
}

func (h *SavedListingHandler) Save(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.savedService.Save(c.Request.Context(), userID, c.Param("listingId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SavedListingHandler) Remove(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.savedService.Remove(c.Request.Context(), userID, c.Param("listingId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SavedListingHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	listings, total, err := h.savedService.List(c.Request.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"listings": listings,
		"page":     page,
		"pageSize": pageSize,
		"total":    total,
	})
}

func (h *SavedListingHandler) IsSaved(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	saved, err := h.savedService.IsSaved(c.Request.Context(), userID, c.Param("listingId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "saved": saved})
}
