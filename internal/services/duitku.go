package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DuitkuService talks to the Duitku merchant API. Duitku has no official Go
// SDK, so this is a plain HTTP client with the MD5 request signatures their
// API requires.
type DuitkuService struct {
	baseURL      string
	merchantCode string
	apiKey       string
	callbackURL  string
	returnURL    string
	client       *http.Client
}

func NewDuitkuService() *DuitkuService {
	url := os.Getenv("DUITKU_BASE_URL")
	if url == "" {
		url = "https://sandbox.duitku.com"
	}
	return &DuitkuService{
		baseURL:      url,
		merchantCode: os.Getenv("DUITKU_MERCHANT_CODE"),
		apiKey:       os.Getenv("DUITKU_API_KEY"),
		callbackURL:  os.Getenv("DUITKU_CALLBACK_URL"),
		returnURL:    os.Getenv("DUITKU_RETURN_URL"),
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

type duitkuInquiryRequest struct {
	MerchantCode    string `json:"merchantCode"`
	PaymentAmount   int64  `json:"paymentAmount"`
	PaymentMethod   string `json:"paymentMethod"`
	MerchantOrderID string `json:"merchantOrderId"`
	ProductDetails  string `json:"productDetails"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	CustomerVaName  string `json:"customerVaName"`
	CallbackURL     string `json:"callbackUrl"`
	ReturnURL       string `json:"returnUrl"`
	Signature       string `json:"signature"`
	ExpiryPeriod    int    `json:"expiryPeriod"` // minutes
}

type duitkuInquiryResponse struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Reference     string `json:"reference"`
	PaymentURL    string `json:"paymentUrl"`
	VANumber      string `json:"vaNumber"`
	QRString      string `json:"qrString"`
	Amount        string `json:"amount"`
}

// DuitkuInquirySignature builds the create-payment signature:
// MD5(merchantCode + merchantOrderId + paymentAmount + apiKey)
func DuitkuInquirySignature(merchantCode, merchantOrderID string, amount int64, apiKey string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s%s%d%s", merchantCode, merchantOrderID, amount, apiKey)))
	return hex.EncodeToString(sum[:])
}

// DuitkuCallbackSignature builds the notification signature Duitku sends:
// MD5(merchantCode + amount + merchantOrderId + apiKey)
func DuitkuCallbackSignature(merchantCode, amount, merchantOrderID, apiKey string) string {
	sum := md5.Sum([]byte(merchantCode + amount + merchantOrderID + apiKey))
	return hex.EncodeToString(sum[:])
}

// VerifyCallbackSignature checks a notification against our credentials.
func (s *DuitkuService) VerifyCallbackSignature(merchantCode, amount, merchantOrderID, signature string) bool {
	if merchantCode != s.merchantCode {
		return false
	}
	expected := DuitkuCallbackSignature(merchantCode, amount, merchantOrderID, s.apiKey)
	return strings.EqualFold(expected, signature)
}

// CreatePayment opens a Duitku invoice via the v2 inquiry endpoint.
func (s *DuitkuService) CreatePayment(ctx context.Context, req GatewayCreateRequest) (*GatewayCreateResult, error) {
	amount := int64(req.Amount)
	expiryMinutes := int(req.ExpiresIn.Minutes())
	if expiryMinutes <= 0 {
		expiryMinutes = 60 * 24
	}

	payload := duitkuInquiryRequest{
		MerchantCode:    s.merchantCode,
		PaymentAmount:   amount,
		PaymentMethod:   req.ChannelCode,
		MerchantOrderID: req.OrderID,
		ProductDetails:  req.ProductName,
		Email:           req.Customer.Email,
		PhoneNumber:     req.Customer.Phone,
		CustomerVaName:  req.Customer.Name,
		CallbackURL:     s.callbackURL,
		ReturnURL:       s.returnURL,
		Signature:       DuitkuInquirySignature(s.merchantCode, req.OrderID, amount, s.apiKey),
		ExpiryPeriod:    expiryMinutes,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inquiry payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/webapi/api/merchant/v2/inquiry", bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach duitku: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read duitku response: %w", err)
	}

	var inquiry duitkuInquiryResponse
	if err := json.Unmarshal(body, &inquiry); err != nil {
		return nil, fmt.Errorf("invalid duitku response (status %d): %s", resp.StatusCode, string(body))
	}

	if inquiry.StatusCode != "00" {
		if isAmountLimitMessage(inquiry.StatusMessage) {
			return nil, fmt.Errorf("duitku rejected amount for %s: %w", req.ChannelCode, ErrAmountLimit)
		}
		return nil, fmt.Errorf("duitku inquiry failed (%s): %s", inquiry.StatusCode, inquiry.StatusMessage)
	}

	return &GatewayCreateResult{
		ExternalID:  inquiry.Reference,
		PaymentURL:  inquiry.PaymentURL,
		VANumber:    inquiry.VANumber,
		QRString:    inquiry.QRString,
		ExpiresAt:   time.Now().Add(time.Duration(expiryMinutes) * time.Minute),
		RawRequest:  data,
		RawResponse: body,
	}, nil
}

type duitkuStatusResponse struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Reference     string `json:"reference"`
	Amount        string `json:"amount"`
}

// CheckStatus queries the transactionStatus endpoint.
// Signature: MD5(merchantCode + merchantOrderId + apiKey)
func (s *DuitkuService) CheckStatus(ctx context.Context, orderID string) (GatewayStatus, error) {
	sum := md5.Sum([]byte(s.merchantCode + orderID + s.apiKey))
	payload := map[string]string{
		"merchantCode":    s.merchantCode,
		"merchantOrderId": orderID,
		"signature":       hex.EncodeToString(sum[:]),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal status payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/webapi/api/merchant/transactionStatus", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach duitku: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read duitku response: %w", err)
	}

	var status duitkuStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return "", fmt.Errorf("invalid duitku response: %s", string(body))
	}

	// Duitku status codes: 00 success, 01 process, 02 canceled/failed
	switch status.StatusCode {
	case "00":
		return GatewayStatusPaid, nil
	case "01":
		return GatewayStatusPending, nil
	case "02":
		return GatewayStatusFailed, nil
	default:
		return "", fmt.Errorf("unknown duitku status %s: %s", status.StatusCode, status.StatusMessage)
	}
}

// isAmountLimitMessage detects the "amount out of range" family of rejections
// so they can be mapped to a user-actionable error.
func isAmountLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "amount") &&
		(strings.Contains(lower, "minimum") || strings.Contains(lower, "maximum") ||
			strings.Contains(lower, "limit") || strings.Contains(lower, "exceed"))
}
