package controllers

import (
	"net/http"

	"civicfix/middleware"
	"civicfix/models"

	"github.com/gin-gonic/gin"
)

// CreateUser registers the user on first sign-in.
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.UpsertUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetUser returns {"user": null} when the email has no account.
func (h *Handler) GetUser(c *gin.Context) {
	res, err := h.svc.GetUser(c.Request.Context(), middlewares.CallerFrom(c), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.UpdateProfile(c.Request.Context(), middlewares.CallerFrom(c), c.Param("email"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SubmitFeedback is public; no token is required.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.SubmitFeedback(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteFeedback(c *gin.Context) {
	res, err := h.svc.DeleteFeedback(c.Request.Context(), middlewares.CallerFrom(c), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
