package handlers

import (
	"net/http"

	"realty_backend/internal/middleware"
	"realty_backend/internal/services"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ListingHandler serves the public listing surfaces, owner CRUD and
// moderation.
type ListingHandler struct {
	*BaseHandler
	listingService *services.ListingService
}

func NewListingHandler(base *BaseHandler, listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{
		BaseHandler:    base,
		listingService: listingService,
	}
}

func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/home", h.Home)

	listings := r.Group("/listings")
	{
		listings.GET("", h.Search)
		listings.GET("/map", h.MapSearch)
		listings.GET("/:id", h.Get)
	}

	protected := r.Group("/listings")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("", h.Create)
		protected.GET("/mine/all", h.MyListings)
		protected.PUT("/:id", h.Update)
		protected.DELETE("/:id", h.Delete)
	}

	admin := r.Group("/admin/listings")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.POST("/:id/approve", h.Approve)
		admin.POST("/:id/archive", h.Archive)
	}
}

// Search serves the main browse grid. The response envelope is identical
// on success and failure; only the status code changes.
func (h *ListingHandler) Search(c *gin.Context) {
	page, err := h.listingService.Search(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		c.JSON(searchStatus(err), page)
		return
	}
	c.JSON(http.StatusOK, page)
}

// MapSearch serves the map surface: one large page, distance-sorted when a
// near point is given.
func (h *ListingHandler) MapSearch(c *gin.Context) {
	page, err := h.listingService.MapSearch(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		c.JSON(searchStatus(err), page)
		return
	}
	c.JSON(http.StatusOK, page)
}

// searchStatus maps a search failure to its status. Probe exhaustion is
// 503; everything else on the read path is 500.
func searchStatus(err error) int {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.HTTPCode > 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}

func (h *ListingHandler) Home(c *gin.Context) {
	sections, err := h.listingService.Home(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.listingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "listing": listing})
}

func (h *ListingHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateListingRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "listing": listing})
}

func (h *ListingHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateListingRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), userID, h.CallerRole(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "listing": listing})
}

func (h *ListingHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), userID, h.CallerRole(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ListingHandler) MyListings(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	listings, total, err := h.listingService.MyListings(c.Request.Context(), userID, pageSize, (page-1)*pageSize)
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

func (h *ListingHandler) Approve(c *gin.Context) {
	if err := h.listingService.Approve(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ListingHandler) Archive(c *gin.Context) {
	if err := h.listingService.Archive(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
