package controllers

import (
	"errors"
	"net/http"

	"civicfix/middleware"
	"civicfix/models"
	"civicfix/services"

	"github.com/gin-gonic/gin"
)

// CreateCheckoutSession starts a premium membership checkout.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req models.PremiumCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.CreatePremiumCheckout(c.Request.Context(), middlewares.CallerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BoostCheckoutSession starts a checkout that raises one issue to High priority.
func (h *Handler) BoostCheckoutSession(c *gin.Context) {
	var req models.BoostCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.CreateBoostCheckout(c.Request.Context(), middlewares.CallerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PaymentSuccess confirms a checkout after the processor redirect. An
// unpaid session is a 400 with success=false and leaves state unchanged.
func (h *Handler) PaymentSuccess(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.ConfirmPayment(c.Request.Context(), middlewares.CallerFrom(c), req.SessionID)
	if errors.Is(err, services.ErrPaymentIncomplete) {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
