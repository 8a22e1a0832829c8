package controllers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"civicfix/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Handler exposes the issue service over HTTP.
type Handler struct {
	svc *services.Service
}

func NewHandler(svc *services.Service) *Handler {
	RegisterValidators()
	return &Handler{svc: svc}
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			log.Printf("Register notblank validation: %v", err)
		}
	})
}

// validEmail checks a path parameter with the same rules as request bodies.
func validEmail(email string) bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return email != ""
	}
	return v.Var(email, "required,email") == nil
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// respondError maps service errors onto status codes. Anything unknown is
// logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	var forbidden *services.ForbiddenError
	switch {
	case errors.Is(err, services.ErrInvalidID):
		badRequest(c, "Invalid ID format")
	case errors.Is(err, services.ErrUnsupportedImage):
		badRequest(c, "Unsupported image type")
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": forbidden.Reason})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden access"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Already exists"})
	case errors.Is(err, services.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Service unavailable"})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
