package services

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAmountLimit is returned when the gateway rejects the amount for the
	// chosen channel (below minimum or above maximum). Handlers remap it to a
	// "choose another payment method" message instead of the raw provider error.
	ErrAmountLimit = errors.New("amount outside the allowed range for this payment method")
)

// GatewayCustomer is the customer info forwarded to the payment processor
type GatewayCustomer struct {
	Name  string
	Email string
	Phone string
}

// GatewayCreateRequest describes one payment to be opened at the processor
type GatewayCreateRequest struct {
	OrderID     string
	Amount      float64
	Currency    string
	ChannelCode string
	ProductName string
	Customer    GatewayCustomer
	ExpiresIn   time.Duration
}

// GatewayCreateResult is the normalized create-payment response
type GatewayCreateResult struct {
	ExternalID  string
	PaymentURL  string
	VANumber    string
	QRString    string
	ExpiresAt   time.Time
	RawRequest  []byte
	RawResponse []byte
}

// GatewayStatus is the normalized settlement state of a payment at the processor
type GatewayStatus string

const (
	GatewayStatusPending GatewayStatus = "pending"
	GatewayStatusPaid    GatewayStatus = "paid"
	GatewayStatusFailed  GatewayStatus = "failed"
	GatewayStatusExpired GatewayStatus = "expired"
)

// Gateway abstracts an external payment processor. Manual methods never reach
// a Gateway; the orchestrator synthesizes their result without a network call.
type Gateway interface {
	// CreatePayment opens a payment at the processor. No retry policy:
	// a failure surfaces immediately to the caller.
	CreatePayment(ctx context.Context, req GatewayCreateRequest) (*GatewayCreateResult, error)

	// CheckStatus asks the processor for the current settlement state.
	CheckStatus(ctx context.Context, orderID string) (GatewayStatus, error)
}
