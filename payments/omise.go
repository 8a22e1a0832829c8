package payments

import (
	"context"
	"fmt"
	"log"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// Omise runs checkouts as offsite charges: a redirect source plus a charge
// whose authorize URI is the hosted payment page.
type Omise struct {
	client     *omise.Client
	currency   string
	sourceType string
}

var _ Processor = (*Omise)(nil)

func NewOmise(publicKey, secretKey, currency, sourceType string) (*Omise, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client init: %w", err)
	}
	return &Omise{client: client, currency: currency, sourceType: sourceType}, nil
}

// CreateCheckout does not honour ctx; the omise client has no per-call context.
func (o *Omise) CreateCheckout(_ context.Context, req CheckoutRequest) (Session, error) {
	source := &omise.Source{}
	err := o.client.Do(source, &operations.CreateSource{
		Type:     o.sourceType,
		Amount:   req.Amount,
		Currency: o.currency,
	})
	if err != nil {
		return Session{}, fmt.Errorf("create source: %w", err)
	}

	metadata := make(map[string]interface{}, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["reference"] = req.Reference

	charge := &omise.Charge{}
	err = o.client.Do(charge, &operations.CreateCharge{
		Amount:      req.Amount,
		Currency:    o.currency,
		Source:      source.ID,
		Description: req.Description,
		ReturnURI:   req.ReturnURL,
		Metadata:    metadata,
	})
	if err != nil {
		return Session{}, fmt.Errorf("create charge: %w", err)
	}

	log.Printf("Created Omise charge %s for checkout %s", charge.ID, req.Reference)
	return sessionFromCharge(charge), nil
}

func (o *Omise) RetrieveSession(_ context.Context, id string) (Session, error) {
	charge := &omise.Charge{}
	if err := o.client.Do(charge, &operations.RetrieveCharge{ChargeID: id}); err != nil {
		return Session{}, fmt.Errorf("retrieve charge %s: %w", id, err)
	}
	return sessionFromCharge(charge), nil
}

func sessionFromCharge(charge *omise.Charge) Session {
	metadata := make(map[string]string, len(charge.Metadata))
	for k, v := range charge.Metadata {
		if s, ok := v.(string); ok {
			metadata[k] = s
		}
	}
	return Session{
		ID:       charge.ID,
		URL:      charge.AuthorizeURI,
		Paid:     charge.Paid && charge.Status == omise.ChargeSuccessful,
		Status:   string(charge.Status),
		Metadata: metadata,
	}
}
