package services

import (
	"context"
	"errors"
	"log"

	"civicfix/models"
	"civicfix/payments"

	"github.com/google/uuid"
)

func (s *Service) CreatePremiumCheckout(ctx context.Context, caller Caller, req models.PremiumCheckoutRequest) (models.CheckoutResponse, error) {
	if err := RequireSelf(caller, req.Email).Err(); err != nil {
		return models.CheckoutResponse{}, err
	}
	p := models.Payment{
		Kind:   models.CheckoutPremium,
		Email:  req.Email,
		UserID: req.UserID,
		Amount: s.cfg.PremiumPrice,
	}
	return s.checkout(ctx, p, "CivicFix premium membership")
}

func (s *Service) CreateBoostCheckout(ctx context.Context, caller Caller, req models.BoostCheckoutRequest) (models.CheckoutResponse, error) {
	if err := RequireSelf(caller, req.Email).Err(); err != nil {
		return models.CheckoutResponse{}, err
	}
	issue, err := s.store.GetIssue(ctx, req.IssueID)
	if err != nil {
		return models.CheckoutResponse{}, err
	}

	title := req.Title
	if title == "" {
		title = issue.Title
	}
	p := models.Payment{
		Kind:    models.CheckoutBoost,
		Email:   req.Email,
		IssueID: req.IssueID,
		Amount:  s.cfg.BoostPrice,
	}
	return s.checkout(ctx, p, "Boost issue: "+title)
}

func (s *Service) checkout(ctx context.Context, p models.Payment, description string) (models.CheckoutResponse, error) {
	if s.payments == nil {
		return models.CheckoutResponse{}, ErrUnavailable
	}

	now := s.now()
	p.ID = uuid.NewString()
	p.Currency = s.cfg.PaymentCurrency
	p.Status = models.PaymentUnpaid
	p.CreatedAt = now
	p.ExpiredAt = now.Add(s.cfg.CheckoutTTL)

	metadata := map[string]string{
		"kind":  string(p.Kind),
		"email": p.Email,
	}
	if p.UserID != "" {
		metadata["userId"] = p.UserID
	}
	if p.IssueID != "" {
		metadata["issueId"] = p.IssueID
	}

	session, err := s.payments.CreateCheckout(ctx, payments.CheckoutRequest{
		Reference:   p.ID,
		Amount:      p.Amount,
		Description: description,
		ReturnURL:   s.cfg.PaymentReturnURL(p.ID),
		Metadata:    metadata,
	})
	if err != nil {
		return models.CheckoutResponse{}, err
	}

	p.ChargeID = session.ID
	if err := s.store.InsertPayment(ctx, &p); err != nil {
		return models.CheckoutResponse{}, err
	}

	return models.CheckoutResponse{
		SessionID: p.ID,
		URL:       session.URL,
		CancelURL: s.cfg.PaymentCancelURL(),
	}, nil
}

// ConfirmPayment applies a paid checkout: the user becomes premium and, for
// a boost, the issue is raised to High priority. A checkout already marked
// paid is reported as successful without touching the user or the issue.
func (s *Service) ConfirmPayment(ctx context.Context, caller Caller, sessionID string) (models.PaymentResult, error) {
	if s.payments == nil {
		return models.PaymentResult{}, ErrUnavailable
	}
	p, err := s.store.GetPayment(ctx, sessionID)
	if err != nil {
		return models.PaymentResult{}, err
	}
	if err := RequireSelf(caller, p.Email).Err(); err != nil {
		return models.PaymentResult{}, err
	}
	if p.Status == models.PaymentPaid {
		return models.PaymentResult{Success: true, Kind: string(p.Kind)}, nil
	}

	session, err := s.payments.RetrieveSession(ctx, p.ChargeID)
	if err != nil {
		return models.PaymentResult{}, err
	}
	if !session.Paid {
		return models.PaymentResult{Success: false, Kind: string(p.Kind), Message: "Payment not completed"}, ErrPaymentIncomplete
	}

	if err := s.applyPayment(ctx, p, session); err != nil {
		return models.PaymentResult{}, err
	}
	return models.PaymentResult{Success: true, Kind: string(p.Kind)}, nil
}

// applyPayment grants what a paid checkout bought and marks the ledger
// entry paid last, so a failed write leaves the checkout retryable.
func (s *Service) applyPayment(ctx context.Context, p models.Payment, session payments.Session) error {
	email := p.Email
	if v := session.Metadata["email"]; v != "" {
		email = v
	}
	issueID := p.IssueID
	if v := session.Metadata["issueId"]; v != "" {
		issueID = v
	}

	now := s.now()
	if err := s.store.SetPremium(ctx, email, now); err != nil {
		return err
	}
	if p.Kind == models.CheckoutBoost && issueID != "" {
		err := s.store.BoostIssue(ctx, issueID, now)
		switch {
		case errors.Is(err, ErrNotFound):
			// The issue was deleted after checkout; the premium grant still stands.
			log.Printf("Boosted issue %s for payment %s no longer exists", issueID, p.ID)
		case err != nil:
			return err
		}
	}
	if err := s.store.MarkPaymentPaid(ctx, p.ID, now); err != nil {
		return err
	}

	log.Printf("Payment %s confirmed for %s (%s)", p.ID, email, p.Kind)
	return nil
}

// PurgeExpiredCheckouts drops unpaid checkouts past their expiry. Each one is
// checked with the processor first: a checkout that was paid but never
// confirmed is applied instead of deleted, and one the processor cannot
// report on is kept for the next run.
func (s *Service) PurgeExpiredCheckouts(ctx context.Context) (int64, error) {
	expired, err := s.store.ExpiredPayments(ctx, s.now())
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, p := range expired {
		if s.payments != nil && p.ChargeID != "" {
			session, err := s.payments.RetrieveSession(ctx, p.ChargeID)
			if err != nil {
				log.Printf("Keeping checkout %s: %v", p.ID, err)
				continue
			}
			if session.Paid {
				if err := s.applyPayment(ctx, p, session); err != nil {
					return deleted, err
				}
				continue
			}
		}

		ok, err := s.store.DeleteUnpaidPayment(ctx, p.ID)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}
