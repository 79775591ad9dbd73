package handlers

import (
	"io"
	"net/http"

	"realty_backend/internal/middleware"
	"realty_backend/internal/services"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	*BaseHandler
	billingService *services.BillingService
}

func NewBillingHandler(base *BaseHandler, billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{
		BaseHandler:    base,
		billingService: billingService,
	}
}

func (h *BillingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/billing/plans", h.Plans)
	// The webhook authenticates by signature, not bearer token.
	r.POST("/billing/webhook", h.Webhook)

	protected := r.Group("/billing")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/checkout", h.Checkout)
		protected.GET("/listings/:listingId/subscription", h.SubscriptionStatus)
	}
}

func (h *BillingHandler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.billingService.Plans()})
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.billingService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read webhook body"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *BillingHandler) SubscriptionStatus(c *gin.Context) {
	sub, err := h.billingService.SubscriptionStatus(c.Request.Context(), c.Param("listingId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
