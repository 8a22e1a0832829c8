package middlewares

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"civicfix/auth"
	"civicfix/services"

	"github.com/gin-gonic/gin"
)

const (
	callerEmailKey = "caller_email"
	callerUIDKey   = "caller_uid"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate verifies the bearer ID token and stores the caller in the
// gin context.
func Authenticate(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrMissingToken) {
				log.Printf("Token verification failed: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
			return
		}
		if id.Email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
			return
		}

		c.Set(callerEmailKey, id.Email)
		c.Set(callerUIDKey, id.UID)
		c.Next()
	}
}

// CallerFrom returns the identity set by Authenticate, or a zero Caller.
func CallerFrom(c *gin.Context) services.Caller {
	return services.Caller{
		UID:   c.GetString(callerUIDKey),
		Email: c.GetString(callerEmailKey),
	}
}

func abortDecision(c *gin.Context, d services.Decision) {
	switch d.Kind {
	case services.Unauthenticated:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": d.Reason})
	default:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": d.Reason})
	}
}

// RequireAdmin lets the request through only when the caller's stored role
// is Admin.
func RequireAdmin(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := svc.AuthorizeAdmin(c.Request.Context(), CallerFrom(c))
		if err != nil {
			log.Printf("Admin check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if !d.Allowed() {
			abortDecision(c, d)
			return
		}
		c.Next()
	}
}

// Timeout bounds the request context so store calls cannot hang a handler.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
