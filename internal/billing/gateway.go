package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// CheckoutParams describe a subscription checkout.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// Session is a hosted stripe page.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// Gateway is the part of the stripe API the service uses.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// StripeGateway calls the stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway returns a gateway using the secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// CreateCustomer creates a customer tagged with the user id.
func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: map[string]string{"userId": userID},
	}
	params.Context = ctx

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	return c.ID, nil
}

// CreateCheckoutSession opens a subscription checkout for one price.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	meta := map[string]string{"userId": p.UserID}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(p.CustomerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card", "ideal", "paypal"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:               stripe.String(p.SuccessURL),
		CancelURL:                stripe.String(p.CancelURL),
		Metadata:                 meta,
		SubscriptionData:         &stripe.CheckoutSessionSubscriptionDataParams{Metadata: meta},
		AllowPromotionCodes:      stripe.Bool(true),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		CustomerUpdate: &stripe.CheckoutSessionCustomerUpdateParams{
			Address: stripe.String("auto"),
		},
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &Session{ID: s.ID, URL: s.URL}, nil
}

// CreatePortalSession opens the billing portal of a customer.
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	return s.URL, nil
}
