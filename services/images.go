package services

import (
	"context"
	"io"

	"civicfix/gcs"
)

const issueImageFolder = "issues"

// UploadIssueImage stores an issue photo and returns its public URL. Only
// the image types gcs.ImageExtension accepts are stored.
func (s *Service) UploadIssueImage(ctx context.Context, caller Caller, r io.Reader, contentType string) (string, error) {
	if caller.Email == "" {
		return "", ErrUnauthenticated
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if _, ok := gcs.ImageExtension(contentType); !ok {
		return "", ErrUnsupportedImage
	}
	if s.images == nil {
		return "", ErrUnavailable
	}
	return s.images.Upload(ctx, r, contentType, issueImageFolder)
}
