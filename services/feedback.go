package services

import (
	"context"

	"civicfix/models"
)

func (s *Service) SubmitFeedback(ctx context.Context, req models.FeedbackRequest) (models.InsertResponse, error) {
	fb := models.Feedback{
		Name:      req.Name,
		Email:     req.Email,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now(),
	}
	id, err := s.store.InsertFeedback(ctx, &fb)
	if err != nil {
		return models.InsertResponse{}, err
	}
	return models.InsertResponse{Inserted: true, InsertedID: id}, nil
}

// DeleteFeedback removes every feedback entry the caller submitted.
func (s *Service) DeleteFeedback(ctx context.Context, caller Caller, email string) (models.DeleteResponse, error) {
	if err := RequireSelf(caller, email).Err(); err != nil {
		return models.DeleteResponse{}, err
	}
	n, err := s.store.DeleteFeedback(ctx, email)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	return models.DeleteResponse{Deleted: n}, nil
}
