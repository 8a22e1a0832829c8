package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Uploader stores issue images in a public bucket.
type Uploader struct {
	client *storage.Client
	bucket string
}

// New connects with the given service-account JSON, or with application
// default credentials when credentialsJSON is empty, and checks the bucket.
func New(ctx context.Context, bucket string, credentialsJSON []byte) (*Uploader, error) {
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to Google Cloud Storage: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("access bucket %s: %w", bucket, err)
	}
	log.Printf("Bucket %s ready", bucket)

	return &Uploader{client: client, bucket: bucket}, nil
}

func (u *Uploader) Close() {
	if u != nil && u.client != nil {
		u.client.Close()
	}
}

// ErrUnsupportedType is returned for content types that are not an accepted image.
var ErrUnsupportedType = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageExtension maps an accepted image content type to a file extension.
// Media type parameters are ignored.
func ImageExtension(contentType string) (string, bool) {
	mediaType, _, _ := strings.Cut(contentType, ";")
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(mediaType))]
	return ext, ok
}

// objectName keeps names unique with a uuid plus a nanosecond stamp.
func objectName(folder, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%d.%s", folder, uuid.NewString(), now.UnixNano(), ext)
}

func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}

// Upload copies r into folder/ and returns the object's public URL.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	ext, ok := ImageExtension(contentType)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	name := objectName(folder, ext, time.Now())

	writer := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", fmt.Errorf("copy file to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer: %w", err)
	}

	url := PublicURL(u.bucket, name)
	log.Printf("File uploaded successfully: %s", url)
	return url, nil
}
