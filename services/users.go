package services

import (
	"context"
	"errors"

	"civicfix/database"
	"civicfix/models"
)

const userExistsMessage = "User already exists"

// UpsertUser creates the user on first contact. Existing users are left
// untouched.
func (s *Service) UpsertUser(ctx context.Context, req models.CreateUserRequest) (models.InsertResponse, error) {
	exists := models.InsertResponse{Inserted: false, Message: userExistsMessage}

	_, err := s.store.FindUser(ctx, req.Email)
	if err == nil {
		return exists, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.InsertResponse{}, err
	}

	now := s.now()
	user := models.User{
		Email:     req.Email,
		Name:      req.Name,
		Photo:     req.Photo,
		Role:      models.RoleUser,
		IsPremium: false,
		CreatedAt: now,
		LastLogin: now,
	}
	id, err := s.store.InsertUser(ctx, &user)
	if errors.Is(err, db.ErrDuplicate) {
		return exists, nil
	}
	if err != nil {
		return models.InsertResponse{}, err
	}
	return models.InsertResponse{Inserted: true, InsertedID: id}, nil
}

// GetUser returns the stored user for the user themself or an Admin.
func (s *Service) GetUser(ctx context.Context, caller Caller, email string) (models.UserResponse, error) {
	d, err := s.authorizeSelfOrAdmin(ctx, caller, email)
	if err != nil {
		return models.UserResponse{}, err
	}
	if err := d.Err(); err != nil {
		return models.UserResponse{}, err
	}

	user, err := s.store.FindUser(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return models.UserResponse{}, nil
	}
	if err != nil {
		return models.UserResponse{}, err
	}
	return models.UserResponse{User: &user}, nil
}

// UpdateProfile overwrites name, email and photo of the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, caller Caller, email string, p models.ProfileUpdate) (models.UpdateResponse, error) {
	if err := RequireSelf(caller, email).Err(); err != nil {
		return models.UpdateResponse{}, err
	}
	res, err := s.store.UpdateProfile(ctx, email, p)
	if err != nil {
		return models.UpdateResponse{}, err
	}
	return models.UpdateResponse{Matched: res.Matched, Modified: res.Modified}, nil
}
