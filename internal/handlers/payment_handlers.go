package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wagate_app_echo/internal/middleware"
	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// PaymentHandler exposes payment creation and lookup for customers.
type PaymentHandler struct {
	db       *gorm.DB
	payments *services.PaymentService
}

func NewPaymentHandler(db *gorm.DB, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{db: db, payments: payments}
}

type createPaymentRequest struct {
	TransactionID uint   `json:"transaction_id" validate:"required"`
	Method        string `json:"method" validate:"required"`
}

// Create opens a payment for an order with the chosen method
// POST /api/customer/payment/create
func (h *PaymentHandler) Create(c echo.Context) error {
	var req createPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	userID := middleware.UserIDFromContext(c)
	result, err := h.payments.CreatePayment(c.Request().Context(), userID, req.TransactionID, req.Method)
	if err != nil {
		return mapServiceError(err)
	}

	message := "Pembayaran dibuat"
	if result.ZeroPrice {
		message = "Pesanan gratis, layanan sedang diaktifkan"
	}
	return respondCreated(c, result, message)
}

// Get returns one payment owned by the caller
// GET /api/customer/payment/:id
func (h *PaymentHandler) Get(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var payment models.Payment
	err := h.db.Joins("JOIN transactions ON transactions.id = payments.transaction_id").
		Where("payments.id = ? AND transactions.user_id = ?", c.Param("id"), userID).
		Preload("Transaction").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
		}
		return err
	}

	return respondOK(c, payment, "")
}
