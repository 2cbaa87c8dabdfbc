package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransService is the Snap-based gateway used for e-wallet and card
// channels that Duitku does not cover for our merchant account.
type MidtransService struct {
	SnapClient snap.Client
	CoreClient coreapi.Client
}

func NewMidtransService() *MidtransService {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	clientKey := os.Getenv("MIDTRANS_CLIENT_KEY")
	envStr := os.Getenv("MIDTRANS_IS_PRODUCTION")

	env := midtrans.Sandbox
	if envStr == "true" {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	var c coreapi.Client
	c.New(serverKey, env)

	midtrans.ServerKey = serverKey
	midtrans.ClientKey = clientKey
	midtrans.Environment = env

	return &MidtransService{
		SnapClient: s,
		CoreClient: c,
	}
}

// CreatePayment opens a Snap transaction and normalizes the response.
func (s *MidtransService) CreatePayment(ctx context.Context, req GatewayCreateRequest) (*GatewayCreateResult, error) {
	expiry := req.ExpiresIn
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	param := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: int64(req.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.OrderID,
				Name:  req.ProductName,
				Price: int64(req.Amount),
				Qty:   1,
			},
		},
		Expiry: &snap.ExpiryDetails{
			Unit:     "minute",
			Duration: int64(expiry.Minutes()),
		},
	}

	resp, midErr := s.SnapClient.CreateTransaction(param)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans create transaction error: %v", midErr)
	}

	reqBytes, _ := json.Marshal(param)
	respBytes, _ := json.Marshal(resp)

	return &GatewayCreateResult{
		ExternalID:  resp.Token,
		PaymentURL:  resp.RedirectURL,
		ExpiresAt:   time.Now().Add(expiry),
		RawRequest:  reqBytes,
		RawResponse: respBytes,
	}, nil
}

// CheckStatus maps a Midtrans transaction status onto the normalized set.
func (s *MidtransService) CheckStatus(ctx context.Context, orderID string) (GatewayStatus, error) {
	resp, midErr := s.CoreClient.CheckTransaction(orderID)
	if midErr != nil {
		return "", fmt.Errorf("midtrans check transaction error: %v", midErr)
	}

	switch resp.TransactionStatus {
	case "settlement", "capture":
		return GatewayStatusPaid, nil
	case "pending":
		return GatewayStatusPending, nil
	case "expire":
		return GatewayStatusExpired, nil
	case "deny", "cancel", "failure":
		return GatewayStatusFailed, nil
	default:
		return "", fmt.Errorf("unknown midtrans status: %s", resp.TransactionStatus)
	}
}

// CancelTransaction cancels a pending Snap transaction at Midtrans.
func (s *MidtransService) CancelTransaction(orderID string) error {
	if _, midErr := s.CoreClient.CancelTransaction(orderID); midErr != nil {
		return fmt.Errorf("midtrans cancel transaction error: %v", midErr)
	}
	return nil
}
