package gateway

import (
	"context"
	"errors"
	"time"
)

var (
	ErrGatewayNotSupported = errors.New("gateway is not supported")
	ErrVerificationFailed  = errors.New("gateway verification failed")
)

type CheckoutInput struct {
	AttemptID   uint64
	PropertyID  uint64
	BuyerID     string
	AmountCents int64
	ExpiresAt   time.Time

	SuccessURL string
	FailureURL string
}

// CheckoutOutput is everything the buyer's client needs to reach the gateway:
// a URL plus, for form-post gateways, the signed fields to submit with it.
type CheckoutOutput struct {
	URL        string
	Method     string
	Fields     map[string]string
	GatewayRef string
}

type VerifyInput struct {
	AttemptID   uint64
	AmountCents int64
	GatewayRef  string
}

type VerifyOutput struct {
	GatewayRef string
	Status     int32
}

type Gateway interface {
	Code() int32
	BuildCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error)
	VerifyPayment(ctx context.Context, input *VerifyInput) (*VerifyOutput, error)
}

type Registry struct {
	gateways map[int32]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	items := make(map[int32]Gateway, len(gateways))
	for _, g := range gateways {
		items[g.Code()] = g
	}
	return &Registry{gateways: items}
}

func (r *Registry) Get(code int32) (Gateway, error) {
	gw, ok := r.gateways[code]
	if !ok {
		return nil, ErrGatewayNotSupported
	}
	return gw, nil
}
