package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port int `env:"PORT" envDefault:"3000"`

	// MongoURI wins over the composed Atlas address when set.
	MongoURI   string `env:"MONGODB_URI"`
	DBUser     string `env:"USER_NAME"`
	DBPassword string `env:"USER_PASSWORD"`
	DBCluster  string `env:"DB_CLUSTER" envDefault:"cluster0.j6dmigp.mongodb.net"`
	DBName     string `env:"DB_NAME" envDefault:"CivicFixBD"`

	OmisePublicKey    string        `env:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey    string        `env:"OMISE_SECRET_KEY"`
	PaymentCurrency   string        `env:"PAYMENT_CURRENCY" envDefault:"thb"`
	PaymentSourceType string        `env:"PAYMENT_SOURCE_TYPE" envDefault:"rabbit_linepay"`
	PremiumPrice      int64         `env:"PREMIUM_PRICE" envDefault:"100000"`
	BoostPrice        int64         `env:"BOOST_PRICE" envDefault:"10000"`
	CheckoutTTL       time.Duration `env:"CHECKOUT_TTL" envDefault:"30m"`

	FirebaseServiceKey string `env:"FB_SERVICE_KEY"`
	SiteDomain         string `env:"SITE_DOMAIN" envDefault:"http://localhost:5173"`
	GCSBucket          string `env:"GCS_BUCKET"`

	CleanupSchedule string        `env:"CLEANUP_SCHEDULE" envDefault:"@every 10m"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	FreeIssueLimit  int64         `env:"FREE_ISSUE_LIMIT" envDefault:"3"`
}

// New loads .env (if present) and parses the process environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[Env]: no .env file loaded:", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

func (c *Config) MongoDSN() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?appName=Cluster0",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword), c.DBCluster)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) PaymentReturnURL(sessionID string) string {
	return c.SiteDomain + "/payment-success?session_id=" + url.QueryEscape(sessionID)
}

func (c *Config) PaymentCancelURL() string {
	return c.SiteDomain + "/payment-cancelled"
}
