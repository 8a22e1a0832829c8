package routes

import (
	"time"

	"civicfix/auth"
	"civicfix/config"
	"civicfix/controllers"
	"civicfix/middleware"
	"civicfix/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, svc *services.Service, verifier auth.Verifier, cfg *config.Config) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.SiteDomain},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middlewares.Timeout(cfg.RequestTimeout))

	h := controllers.NewHandler(svc)

	SetupPublicRoutes(r, h)
	SetupIssueRoutes(r, h, verifier)
	SetupUserRoutes(r, h, verifier)
	SetupPaymentRoutes(r, h, verifier)
	SetupAdminRoutes(r, h, svc, verifier)
}

func SetupPublicRoutes(r *gin.Engine, h *controllers.Handler) {
	r.GET("/", h.Home)
	r.GET("/latest-issue", h.LatestIssues)
	r.GET("/all-issue", h.AllIssues)
	r.GET("/issues/:id", h.GetIssue)
	r.POST("/users", h.CreateUser)
	r.POST("/feedback", h.SubmitFeedback)
	r.GET("/dashboard/stats", h.DashboardStats)
}

func SetupIssueRoutes(r *gin.Engine, h *controllers.Handler, verifier auth.Verifier) {
	g := r.Group("/", middlewares.Authenticate(verifier))
	g.POST("/reportissue", h.ReportIssue)
	g.GET("/myissues/:email", h.MyIssues)
	g.GET("/myissues/:email/count", h.CountMyIssues)
	g.PATCH("/issues/:id", h.EditIssue)
	g.DELETE("/issues/:id", h.DeleteIssue)
	g.PATCH("/issues/:id/upvote", h.Upvote)
	g.POST("/upload-image", h.UploadImage)
}

func SetupUserRoutes(r *gin.Engine, h *controllers.Handler, verifier auth.Verifier) {
	g := r.Group("/", middlewares.Authenticate(verifier))
	g.GET("/users/:email", h.GetUser)
	g.PATCH("/users/:email", h.UpdateProfile)
	g.DELETE("/feedback/:email", h.DeleteFeedback)
}

func SetupPaymentRoutes(r *gin.Engine, h *controllers.Handler, verifier auth.Verifier) {
	g := r.Group("/", middlewares.Authenticate(verifier))
	g.POST("/create-checkout-session", h.CreateCheckoutSession)
	g.POST("/boost-checkout-session", h.BoostCheckoutSession)
	g.POST("/payment-success", h.PaymentSuccess)
}

func SetupAdminRoutes(r *gin.Engine, h *controllers.Handler, svc *services.Service, verifier auth.Verifier) {
	g := r.Group("/admin", middlewares.Authenticate(verifier), middlewares.RequireAdmin(svc))
	g.GET("/stats", h.AdminStats)
}
