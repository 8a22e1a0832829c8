package payments

import "context"

type CheckoutRequest struct {
	Reference   string
	Amount      int64
	Description string
	ReturnURL   string
	Metadata    map[string]string
}

// Session is the processor-side view of a hosted checkout.
type Session struct {
	ID       string
	URL      string
	Paid     bool
	Status   string
	Metadata map[string]string
}

type Processor interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Session, error)
	RetrieveSession(ctx context.Context, id string) (Session, error)
}
