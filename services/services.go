package services

import (
	"context"
	"errors"
	"io"
	"time"

	"civicfix/config"
	"civicfix/database"
	"civicfix/gcs"
	"civicfix/payments"
)

var (
	ErrNotFound          = db.ErrNotFound
	ErrInvalidID         = db.ErrInvalidID
	ErrConflict          = db.ErrDuplicate
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrUnavailable       = errors.New("service unavailable")
	ErrUnsupportedImage  = gcs.ErrUnsupportedType
)

// Caller is the identity attached to a request by the auth middleware.
type Caller struct {
	UID   string
	Email string
}

type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error)
}

type Service struct {
	store    db.Store
	payments payments.Processor
	images   ImageUploader
	cfg      *config.Config
	now      func() time.Time
}

// New wires the service. processor and images may be nil; the operations
// that need them then fail with ErrUnavailable.
func New(store db.Store, processor payments.Processor, images ImageUploader, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		payments: processor,
		images:   images,
		cfg:      cfg,
		now:      time.Now,
	}
}
