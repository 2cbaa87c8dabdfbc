package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// CallbackHandler receives asynchronous payment notifications from the
// gateways. Every callback is archived raw before any processing so disputes
// can be reconstructed even when handling fails.
type CallbackHandler struct {
	db       *gorm.DB
	payments *services.PaymentService
	duitku   *services.DuitkuService
	midtrans *services.MidtransService
}

func NewCallbackHandler(db *gorm.DB, payments *services.PaymentService, duitku *services.DuitkuService, midtrans *services.MidtransService) *CallbackHandler {
	return &CallbackHandler{db: db, payments: payments, duitku: duitku, midtrans: midtrans}
}

func (h *CallbackHandler) archive(provider models.PaymentGatewayProvider, orderID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s callback for archiving: %v", provider, err)
		return
	}
	history := models.PaymentCallbackHistory{
		Provider: provider,
		OrderID:  orderID,
		Metadata: data,
	}
	if err := h.db.Create(&history).Error; err != nil {
		log.Printf("Failed to archive %s callback: %v", provider, err)
	}
}

// Duitku handles Duitku's form-encoded payment notification.
// POST /api/callback/duitku
func (h *CallbackHandler) Duitku(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid callback body")
	}

	merchantCode := c.FormValue("merchantCode")
	amount := c.FormValue("amount")
	orderID := c.FormValue("merchantOrderId")
	resultCode := c.FormValue("resultCode")
	signature := c.FormValue("signature")

	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	h.archive(models.GatewayProviderDuitku, orderID, flat)

	if !h.duitku.VerifyCallbackSignature(merchantCode, amount, orderID, signature) {
		log.Printf("Duitku callback signature mismatch for order %s", orderID)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid signature")
	}

	payment, err := h.payments.FindPaymentByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Unknown order")
		}
		return err
	}

	ctx := c.Request().Context()
	switch resultCode {
	case "00":
		if err := h.payments.SettlePayment(ctx, payment.ID); err != nil {
			return err
		}
	default:
		if err := h.payments.MarkPaymentFailed(ctx, payment.ID, models.PaymentStatusFailed); err != nil {
			return err
		}
	}

	return c.String(http.StatusOK, "OK")
}

type midtransNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	FraudStatus       string `json:"fraud_status"`
}

// Midtrans handles Midtrans' JSON payment notification. The notification body
// is untrusted; the authoritative status comes from a direct status check
// against Midtrans.
// POST /api/callback/midtrans
func (h *CallbackHandler) Midtrans(c echo.Context) error {
	var notif midtransNotification
	if err := c.Bind(&notif); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid callback body")
	}
	if notif.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing order_id")
	}

	h.archive(models.GatewayProviderMidtrans, notif.OrderID, notif)

	payment, err := h.payments.FindPaymentByOrderID(notif.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Unknown order")
		}
		return err
	}

	ctx := c.Request().Context()
	status, err := h.midtrans.CheckStatus(ctx, notif.OrderID)
	if err != nil {
		return err
	}

	switch status {
	case services.GatewayStatusPaid:
		if err := h.payments.SettlePayment(ctx, payment.ID); err != nil {
			return err
		}
	case services.GatewayStatusExpired:
		if err := h.payments.MarkPaymentFailed(ctx, payment.ID, models.PaymentStatusExpired); err != nil {
			return err
		}
	case services.GatewayStatusFailed:
		if err := h.payments.MarkPaymentFailed(ctx, payment.ID, models.PaymentStatusFailed); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
