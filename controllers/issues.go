package controllers

import (
	"net/http"

	"civicfix/middleware"
	"civicfix/models"
	"civicfix/utils"

	"github.com/gin-gonic/gin"
)

// Home answers the liveness probe with plain text.
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, "CivicFix server is running")
}

// LatestIssues returns the six issues shown on the landing page.
func (h *Handler) LatestIssues(c *gin.Context) {
	issues, err := h.svc.LatestIssues(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

// AllIssues lists issues filtered by the title, category, location and
// search query parameters. limit and skip must be non-negative integers.
func (h *Handler) AllIssues(c *gin.Context) {
	limit, err := utils.ParseNonNegative("limit", c.Query("limit"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	skip, err := utils.ParseNonNegative("skip", c.Query("skip"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.svc.SearchIssues(c.Request.Context(), models.IssueFilter{
		Title:    c.Query("title"),
		Category: c.Query("category"),
		Location: c.Query("location"),
		Search:   c.Query("search"),
		Limit:    limit,
		Skip:     skip,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetIssue returns one issue by id.
func (h *Handler) GetIssue(c *gin.Context) {
	issue, err := h.svc.GetIssue(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// ReportIssue creates an issue owned by the caller.
func (h *Handler) ReportIssue(c *gin.Context) {
	var req models.ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.ReportIssue(c.Request.Context(), middlewares.CallerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MyIssues lists the caller's own issues.
func (h *Handler) MyIssues(c *gin.Context) {
	email := c.Param("email")
	if !validEmail(email) {
		badRequest(c, "Invalid email")
		return
	}
	issues, err := h.svc.MyIssues(c.Request.Context(), middlewares.CallerFrom(c), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

// CountMyIssues counts the caller's own issues, used by the client to show
// the remaining free quota.
func (h *Handler) CountMyIssues(c *gin.Context) {
	email := c.Param("email")
	if !validEmail(email) {
		badRequest(c, "Invalid email")
		return
	}
	res, err := h.svc.CountMyIssues(c.Request.Context(), middlewares.CallerFrom(c), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// EditIssue overwrites the editable fields of an issue the caller owns.
func (h *Handler) EditIssue(c *gin.Context) {
	var edit models.IssueEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	res, err := h.svc.EditIssue(c.Request.Context(), middlewares.CallerFrom(c), c.Param("id"), edit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteIssue removes an issue the caller owns.
func (h *Handler) DeleteIssue(c *gin.Context) {
	res, err := h.svc.DeleteIssue(c.Request.Context(), middlewares.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Upvote records the caller's vote. A repeat vote is answered with 200 and
// upvoted=false.
func (h *Handler) Upvote(c *gin.Context) {
	res, err := h.svc.Upvote(c.Request.Context(), middlewares.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DashboardStats returns issue totals by status.
func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminStats returns issue and user totals. Routed behind RequireAdmin.
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.svc.AdminStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
