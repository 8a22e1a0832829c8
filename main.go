package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicfix/auth"
	"civicfix/config"
	"civicfix/database"
	"civicfix/gcs"
	"civicfix/jobs"
	"civicfix/payments"
	"civicfix/routes"
	"civicfix/services"

	"github.com/gin-gonic/gin"
)

const (
	startupTimeout  = 20 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := db.Connect(ctx, cfg.MongoDSN(), cfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}

	credentials, err := auth.DecodeServiceAccount(cfg.FirebaseServiceKey)
	if err != nil {
		log.Fatal(err)
	}
	verifier, err := auth.NewFirebaseVerifierFromCredentials(ctx, credentials)
	if err != nil {
		log.Fatal("Failed to initialise token verifier:", err)
	}

	// Uploads and payments are optional; their routes answer 503 when unset.
	var images services.ImageUploader
	var uploader *gcs.Uploader
	if cfg.GCSBucket != "" {
		uploader, err = gcs.New(ctx, cfg.GCSBucket, credentials)
		if err != nil {
			log.Fatal("Failed to initialise GCS:", err)
		}
		images = uploader
	} else {
		log.Println("GCS_BUCKET not set, image upload disabled")
	}

	var processor payments.Processor
	if cfg.OmiseSecretKey != "" {
		processor, err = payments.NewOmise(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.PaymentCurrency, cfg.PaymentSourceType)
		if err != nil {
			log.Fatal("Failed to initialise Omise client:", err)
		}
	} else {
		log.Println("OMISE_SECRET_KEY not set, checkout disabled")
	}

	svc := services.New(client.Store(), processor, images, cfg)

	scheduler, err := jobs.Start(cfg.CleanupSchedule, svc)
	if err != nil {
		log.Fatal("Failed to schedule cleanup:", err)
	}

	r := gin.Default()
	routes.SetupRoutes(r, svc, verifier, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("Starting server on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server shutdown:", err)
	}
	scheduler.Stop(shutdownCtx)
	if uploader != nil {
		uploader.Close()
	}
	client.Close(shutdownCtx)
	log.Println("Server stopped")
}
