package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wagate_app_echo/internal/middleware"
	"wagate_app_echo/internal/models"
)

// TransactionHandler lists a customer's orders.
type TransactionHandler struct {
	db *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// List returns the caller's orders, newest first
// GET /api/customer/transactions
func (h *TransactionHandler) List(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var transactions []models.Transaction
	err := h.db.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at desc").
		Limit(50).
		Find(&transactions).Error
	if err != nil {
		return err
	}

	return respondOK(c, transactions, "")
}

// Get returns one order with its payment attempts
// GET /api/customer/transactions/:id
func (h *TransactionHandler) Get(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var transaction models.Transaction
	err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Preload("Items").
		Preload("Payments").
		Preload("Voucher").
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Transaction not found")
		}
		return err
	}

	return respondOK(c, transaction, "")
}
