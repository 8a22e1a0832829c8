package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civicfix/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store used by tests and local runs without
// a cluster. It follows the Mongo store's ordering and filter semantics.
type MemoryStore struct {
	mu       sync.Mutex
	issues   []models.Issue
	users    []models.User
	feedback []models.Feedback
	payments map[string]models.Payment
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: map[string]models.Payment{}}
}

func containsFoldString(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchesFilter(issue models.Issue, f models.IssueFilter) bool {
	if f.Title != "" && !containsFoldString(issue.Title, f.Title) {
		return false
	}
	if f.Category != "" && !containsFoldString(issue.Category, f.Category) {
		return false
	}
	if f.Location != "" && !containsFoldString(issue.Location, f.Location) {
		return false
	}
	if f.Search != "" &&
		!containsFoldString(issue.Title, f.Search) &&
		!containsFoldString(issue.Category, f.Search) &&
		!containsFoldString(issue.Location, f.Search) {
		return false
	}
	return true
}

func copyIssue(i models.Issue) models.Issue {
	i.UpvotedBy = append([]string{}, i.UpvotedBy...)
	return i
}

func (s *MemoryStore) issueIndex(id string) (int, error) {
	objID, err := objectID(id)
	if err != nil {
		return -1, err
	}
	for idx := range s.issues {
		if s.issues[idx].ID == objID {
			return idx, nil
		}
	}
	return -1, ErrNotFound
}

func (s *MemoryStore) LatestIssues(_ context.Context, limit int64) ([]models.IssueSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]models.Issue{}, s.issues...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Status > sorted[b].Status
	})

	latest := []models.IssueSummary{}
	for _, issue := range sorted {
		if limit > 0 && int64(len(latest)) >= limit {
			break
		}
		latest = append(latest, issue.Summary())
	}
	return latest, nil
}

func (s *MemoryStore) SearchIssues(_ context.Context, f models.IssueFilter) ([]models.Issue, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []models.Issue{}
	for _, issue := range s.issues {
		if matchesFilter(issue, f) {
			matched = append(matched, copyIssue(issue))
		}
	}
	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Priority < matched[b].Priority
	})

	if f.Skip > 0 {
		if f.Skip >= int64(len(matched)) {
			matched = []models.Issue{}
		} else {
			matched = matched[f.Skip:]
		}
	}
	if f.Limit > 0 && f.Limit < int64(len(matched)) {
		matched = matched[:f.Limit]
	}
	return matched, int64(len(s.issues)), nil
}

func (s *MemoryStore) GetIssue(_ context.Context, id string) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.issueIndex(id)
	if err != nil {
		return models.Issue{}, err
	}
	return copyIssue(s.issues[idx]), nil
}

func (s *MemoryStore) InsertIssue(_ context.Context, issue *models.Issue) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.UpvotedBy == nil {
		issue.UpvotedBy = []string{}
	}
	s.issues = append(s.issues, copyIssue(*issue))
	return issue.ID.Hex(), nil
}

func (s *MemoryStore) IssuesByReporter(_ context.Context, email string) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues := []models.Issue{}
	for _, issue := range s.issues {
		if issue.Email == email {
			issues = append(issues, copyIssue(issue))
		}
	}
	return issues, nil
}

func (s *MemoryStore) CountIssuesByReporter(_ context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, issue := range s.issues {
		if issue.Email == email {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UpdateIssue(_ context.Context, id string, edit models.IssueEdit, at time.Time) (UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.issueIndex(id)
	if err == ErrNotFound {
		return UpdateResult{}, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}

	issue := &s.issues[idx]
	issue.Title = edit.Title
	issue.Description = edit.Description
	issue.Category = edit.Category
	issue.Location = edit.Location
	issue.Image = edit.Image
	issue.UpdatedAt = at
	return UpdateResult{Matched: 1, Modified: 1}, nil
}

func (s *MemoryStore) DeleteIssue(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.issueIndex(id)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	s.issues = append(s.issues[:idx], s.issues[idx+1:]...)
	return 1, nil
}

func (s *MemoryStore) AddUpvote(_ context.Context, id, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.issueIndex(id)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	issue := &s.issues[idx]
	if issue.Email == email || issue.HasUpvoted(email) {
		return false, nil
	}
	issue.Upvotes++
	issue.UpvotedBy = append(issue.UpvotedBy, email)
	return true, nil
}

func (s *MemoryStore) BoostIssue(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.issueIndex(id)
	if err != nil {
		return err
	}
	issue := &s.issues[idx]
	issue.Priority = models.PriorityHigh
	issue.PaymentStatus = models.PaymentPaid
	issue.PremiumSince = &at
	return nil
}

func (s *MemoryStore) IssueStats(_ context.Context) (models.IssueStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats models.IssueStats
	for _, issue := range s.issues {
		stats.Add(issue.Status, 1)
	}
	return stats, nil
}

func (s *MemoryStore) userIndex(email string) int {
	for idx := range s.users {
		if s.users[idx].Email == email {
			return idx
		}
	}
	return -1
}

func (s *MemoryStore) FindUser(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(email)
	if idx < 0 {
		return models.User{}, ErrNotFound
	}
	return s.users[idx], nil
}

func (s *MemoryStore) InsertUser(_ context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(user.Email) >= 0 {
		return "", ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users = append(s.users, *user)
	return user.ID.Hex(), nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, email string, p models.ProfileUpdate) (UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(email)
	if idx < 0 {
		return UpdateResult{}, nil
	}
	if other := s.userIndex(p.Email); other >= 0 && other != idx {
		return UpdateResult{}, ErrDuplicate
	}

	user := &s.users[idx]
	user.Name = p.Name
	user.Email = p.Email
	user.Photo = p.Photo
	return UpdateResult{Matched: 1, Modified: 1}, nil
}

func (s *MemoryStore) SetPremium(_ context.Context, email string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(email)
	if idx < 0 {
		s.users = append(s.users, models.User{
			ID:        primitive.NewObjectID(),
			Email:     email,
			Role:      models.RoleUser,
			CreatedAt: at,
			LastLogin: at,
		})
		idx = len(s.users) - 1
	}
	user := &s.users[idx]
	user.IsPremium = true
	user.PaymentStatus = models.PaymentPaid
	user.PremiumSince = &at
	return nil
}

func (s *MemoryStore) UserStats(_ context.Context) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.UserStats{Total: int64(len(s.users))}
	for _, u := range s.users {
		if u.IsPremium {
			stats.Premium++
		}
	}
	return stats, nil
}

func (s *MemoryStore) InsertFeedback(_ context.Context, fb *models.Feedback) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	s.feedback = append(s.feedback, *fb)
	return fb.ID.Hex(), nil
}

func (s *MemoryStore) DeleteFeedback(_ context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.feedback[:0]
	var deleted int64
	for _, fb := range s.feedback {
		if fb.Email == email {
			deleted++
			continue
		}
		kept = append(kept, fb)
	}
	s.feedback = kept
	return deleted, nil
}

func (s *MemoryStore) InsertPayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[p.ID]; ok {
		return ErrDuplicate
	}
	s.payments[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id string) (models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) MarkPaymentPaid(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil
	}
	p.Status = models.PaymentPaid
	p.PaidAt = &at
	s.payments[id] = p
	return nil
}

func (s *MemoryStore) ExpiredPayments(_ context.Context, now time.Time) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []models.Payment
	for _, p := range s.payments {
		if p.Status == models.PaymentUnpaid && p.ExpiredAt.Before(now) {
			expired = append(expired, p)
		}
	}
	sort.Slice(expired, func(a, b int) bool { return expired[a].ExpiredAt.Before(expired[b].ExpiredAt) })
	return expired, nil
}

func (s *MemoryStore) DeleteUnpaidPayment(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok || p.Status != models.PaymentUnpaid {
		return false, nil
	}
	delete(s.payments, id)
	return true, nil
}
