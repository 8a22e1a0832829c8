package controllers

import (
	"net/http"

	"civicfix/middleware"
	"civicfix/models"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

// UploadImage stores the multipart "image" file and returns its public URL.
func (h *Handler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		badRequest(c, "Image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	url, err := h.svc.UploadIssueImage(c.Request.Context(), middlewares.CallerFrom(c), file, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UploadResponse{URL: url})
}
