package handlers

import (
	"net/http"

	"realty_backend/internal/middleware"
	"realty_backend/internal/services"
	"realty_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService *services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/listings/:id/reviews", h.ListForListing)

	protected := r.Group("/reviews")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("", h.Upsert)
		protected.DELETE("/:id", h.Delete)
	}
}

// Upsert creates or overwrites the caller's review for a listing.
func (h *ReviewHandler) Upsert(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpsertReviewRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Upsert(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

func (h *ReviewHandler) ListForListing(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	resp, err := h.reviewService.ListForListing(c.Request.Context(), c.Param("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, h.CallerRole(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
