package services

import (
	"context"
	"errors"
	"fmt"

	"civicfix/database"
	"civicfix/models"
)

const latestIssueCount = 6

// LatestIssues returns summaries of the newest issues ordered by status.
func (s *Service) LatestIssues(ctx context.Context) ([]models.IssueSummary, error) {
	return s.store.LatestIssues(ctx, latestIssueCount)
}

// SearchIssues applies f and reports the unfiltered collection size as Total.
func (s *Service) SearchIssues(ctx context.Context, f models.IssueFilter) (models.IssueListResponse, error) {
	issues, total, err := s.store.SearchIssues(ctx, f)
	if err != nil {
		return models.IssueListResponse{}, err
	}
	return models.IssueListResponse{Issues: issues, Total: total}, nil
}

func (s *Service) GetIssue(ctx context.Context, id string) (models.Issue, error) {
	return s.store.GetIssue(ctx, id)
}

// ReportIssue stores a new issue for the caller. Reporters without premium
// are limited to FreeIssueLimit issues.
func (s *Service) ReportIssue(ctx context.Context, caller Caller, req models.ReportIssueRequest) (models.InsertResponse, error) {
	email := req.Email
	if email == "" {
		email = caller.Email
	}
	if err := RequireSelf(caller, email).Err(); err != nil {
		return models.InsertResponse{}, err
	}

	premium := false
	user, err := s.store.FindUser(ctx, email)
	switch {
	case err == nil:
		premium = user.IsPremium
	case !errors.Is(err, db.ErrNotFound):
		return models.InsertResponse{}, err
	}

	if !premium {
		count, err := s.store.CountIssuesByReporter(ctx, email)
		if err != nil {
			return models.InsertResponse{}, err
		}
		if count >= s.cfg.FreeIssueLimit {
			return models.InsertResponse{}, &ForbiddenError{Reason: fmt.Sprintf(
				"Free users can report up to %d issues. Upgrade to premium to report more.", s.cfg.FreeIssueLimit)}
		}
	}

	issue := models.Issue{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		Image:         req.Image,
		Status:        models.StatusPending,
		Priority:      models.PriorityNormal,
		Email:         email,
		Upvotes:       0,
		UpvotedBy:     []string{},
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     s.now(),
	}
	id, err := s.store.InsertIssue(ctx, &issue)
	if err != nil {
		return models.InsertResponse{}, err
	}
	return models.InsertResponse{Inserted: true, InsertedID: id}, nil
}

// MyIssues lists the issues reported by email. Only that user may ask.
func (s *Service) MyIssues(ctx context.Context, caller Caller, email string) ([]models.Issue, error) {
	if err := RequireSelf(caller, email).Err(); err != nil {
		return nil, err
	}
	return s.store.IssuesByReporter(ctx, email)
}

// CountMyIssues counts the issues reported by email. Only that user may ask.
func (s *Service) CountMyIssues(ctx context.Context, caller Caller, email string) (models.CountResponse, error) {
	if err := RequireSelf(caller, email).Err(); err != nil {
		return models.CountResponse{}, err
	}
	n, err := s.store.CountIssuesByReporter(ctx, email)
	if err != nil {
		return models.CountResponse{}, err
	}
	return models.CountResponse{Count: n}, nil
}

func (s *Service) ownedIssue(ctx context.Context, caller Caller, id string) (models.Issue, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return models.Issue{}, err
	}
	if err := RequireOwner(caller, issue).Err(); err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

// EditIssue overwrites the editable fields and stamps UpdatedAt. Only the
// reporter may edit.
func (s *Service) EditIssue(ctx context.Context, caller Caller, id string, edit models.IssueEdit) (models.UpdateResponse, error) {
	if _, err := s.ownedIssue(ctx, caller, id); err != nil {
		return models.UpdateResponse{}, err
	}
	res, err := s.store.UpdateIssue(ctx, id, edit, s.now())
	if err != nil {
		return models.UpdateResponse{}, err
	}
	return models.UpdateResponse{Matched: res.Matched, Modified: res.Modified}, nil
}

// DeleteIssue removes an issue. Only the reporter may delete.
func (s *Service) DeleteIssue(ctx context.Context, caller Caller, id string) (models.DeleteResponse, error) {
	if _, err := s.ownedIssue(ctx, caller, id); err != nil {
		return models.DeleteResponse{}, err
	}
	n, err := s.store.DeleteIssue(ctx, id)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	return models.DeleteResponse{Deleted: n}, nil
}

// Upvote adds the caller's vote once. Owners are rejected; repeat votes are
// reported but are not errors.
func (s *Service) Upvote(ctx context.Context, caller Caller, id string) (models.UpvoteResponse, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return models.UpvoteResponse{}, err
	}
	if err := RequireNotOwner(caller, issue).Err(); err != nil {
		return models.UpvoteResponse{}, err
	}

	already := models.UpvoteResponse{Upvoted: false, Message: "Already upvoted"}
	if issue.HasUpvoted(caller.Email) {
		return already, nil
	}
	added, err := s.store.AddUpvote(ctx, id, caller.Email)
	if err != nil {
		return models.UpvoteResponse{}, err
	}
	if !added {
		return already, nil
	}
	return models.UpvoteResponse{Upvoted: true, Message: "Upvoted successfully"}, nil
}

// DashboardStats counts issues by status.
func (s *Service) DashboardStats(ctx context.Context) (models.IssueStats, error) {
	return s.store.IssueStats(ctx)
}

// AdminStats assumes the caller already passed AuthorizeAdmin.
func (s *Service) AdminStats(ctx context.Context) (models.AdminStats, error) {
	issues, err := s.store.IssueStats(ctx)
	if err != nil {
		return models.AdminStats{}, err
	}
	users, err := s.store.UserStats(ctx)
	if err != nil {
		return models.AdminStats{}, err
	}
	return models.AdminStats{IssueStats: issues, UserStats: users}, nil
}
