package models

// Request and response bodies of the HTTP surface.

type ReportIssueRequest struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Image       string `json:"image"`
	Email       string `json:"email" binding:"omitempty,email"`
}

type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type FeedbackRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type PremiumCheckoutRequest struct {
	Email  string `json:"email" binding:"required,email"`
	UserID string `json:"userId"`
}

type BoostCheckoutRequest struct {
	IssueID string `json:"issueId" binding:"required"`
	Title   string `json:"title"`
	Email   string `json:"email" binding:"required,email"`
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type IssueListResponse struct {
	Issues []Issue `json:"issues"`
	Total  int64   `json:"total"`
}

type InsertResponse struct {
	Inserted   bool   `json:"inserted"`
	InsertedID string `json:"insertedId,omitempty"`
	Message    string `json:"message,omitempty"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type UpdateResponse struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deletedCount"`
}

type UpvoteResponse struct {
	Upvoted bool   `json:"upvoted"`
	Message string `json:"message"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	CancelURL string `json:"cancelUrl"`
}

type PaymentResult struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

type AdminStats struct {
	IssueStats
	UserStats
}

type UploadResponse struct {
	URL string `json:"url"`
}
