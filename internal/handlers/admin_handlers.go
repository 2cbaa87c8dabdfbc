package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// AdminHandler is the dashboard API: catalog management, vouchers, manual
// payment approval, and usage analytics.
type AdminHandler struct {
	db       *gorm.DB
	cache    *services.RedisCache
	payments *services.PaymentService
}

func NewAdminHandler(db *gorm.DB, cache *services.RedisCache, payments *services.PaymentService) *AdminHandler {
	return &AdminHandler{db: db, cache: cache, payments: payments}
}

// invalidateCatalog drops the public catalog caches after an admin write.
func (h *AdminHandler) invalidateCatalog(c echo.Context) {
	ctx := c.Request().Context()
	_ = h.cache.Delete(ctx, "catalog:packages")
	_ = h.cache.Delete(ctx, "catalog:payment_methods")
}

// --- Packages ---

// ListPackages returns all packages, active or not
// GET /api/admin/packages
func (h *AdminHandler) ListPackages(c echo.Context) error {
	var packages []models.WhatsAppPackage
	if err := h.db.Order("id").Find(&packages).Error; err != nil {
		return err
	}
	return respondOK(c, packages, "")
}

type packageRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gte=0"`
	MaxSessions  int     `json:"max_sessions" validate:"required,gte=1"`
	DurationDays int     `json:"duration_days" validate:"required,gte=1"`
	IsActive     bool    `json:"is_active"`
}

// CreatePackage adds a package to the catalog
// POST /api/admin/packages
func (h *AdminHandler) CreatePackage(c echo.Context) error {
	var req packageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pkg := models.WhatsAppPackage{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		MaxSessions:  req.MaxSessions,
		DurationDays: req.DurationDays,
		IsActive:     req.IsActive,
	}
	if err := h.db.Create(&pkg).Error; err != nil {
		return err
	}

	h.invalidateCatalog(c)
	return respondCreated(c, pkg, "")
}

// UpdatePackage edits a package
// PUT /api/admin/packages/:id
func (h *AdminHandler) UpdatePackage(c echo.Context) error {
	var pkg models.WhatsAppPackage
	if err := h.db.First(&pkg, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Package not found")
		}
		return err
	}

	var req packageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.db.Model(&pkg).Updates(map[string]interface{}{
		"name":          req.Name,
		"description":   req.Description,
		"price":         req.Price,
		"max_sessions":  req.MaxSessions,
		"duration_days": req.DurationDays,
		"is_active":     req.IsActive,
	}).Error
	if err != nil {
		return err
	}

	h.invalidateCatalog(c)
	return respondOK(c, pkg, "")
}

// DeletePackage soft-deletes a package. Existing subscriptions keep working.
// DELETE /api/admin/packages/:id
func (h *AdminHandler) DeletePackage(c echo.Context) error {
	result := h.db.Delete(&models.WhatsAppPackage{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Package not found")
	}

	h.invalidateCatalog(c)
	return respondOK(c, nil, "Package deleted")
}

// --- Payment methods ---

// ListPaymentMethods returns every configured method with fee internals
// GET /api/admin/payment-methods
func (h *AdminHandler) ListPaymentMethods(c echo.Context) error {
	var configs []models.PaymentMethodConfig
	if err := h.db.Order("id").Find(&configs).Error; err != nil {
		return err
	}
	return respondOK(c, configs, "")
}

type paymentMethodRequest struct {
	Code                   string  `json:"code" validate:"required"`
	Name                   string  `json:"name" validate:"required"`
	FeeType                string  `json:"fee_type" validate:"required,oneof=percentage fixed"`
	FeeValue               float64 `json:"fee_value" validate:"gte=0"`
	MinFee                 float64 `json:"min_fee" validate:"gte=0"`
	MaxFee                 float64 `json:"max_fee" validate:"gte=0"`
	IsActive               bool    `json:"is_active"`
	IsGateway              bool    `json:"is_gateway"`
	RequiresManualApproval bool    `json:"requires_manual_approval"`
	GatewayProvider        string  `json:"gateway_provider" validate:"omitempty,oneof=duitku midtrans manual"`
	GatewayChannelCode     string  `json:"gateway_channel_code"`
	BankName               string  `json:"bank_name"`
	BankAccountNumber      string  `json:"bank_account_number"`
	BankAccountName        string  `json:"bank_account_name"`
}

func (r paymentMethodRequest) toModel() models.PaymentMethodConfig {
	provider := models.PaymentGatewayProvider(r.GatewayProvider)
	if provider == "" {
		provider = models.GatewayProviderManual
	}
	return models.PaymentMethodConfig{
		Code:                   r.Code,
		Name:                   r.Name,
		FeeType:                models.FeeType(r.FeeType),
		FeeValue:               r.FeeValue,
		MinFee:                 r.MinFee,
		MaxFee:                 r.MaxFee,
		IsActive:               r.IsActive,
		IsGateway:              r.IsGateway,
		RequiresManualApproval: r.RequiresManualApproval,
		GatewayProvider:        provider,
		GatewayChannelCode:     r.GatewayChannelCode,
		BankName:               r.BankName,
		BankAccountNumber:      r.BankAccountNumber,
		BankAccountName:        r.BankAccountName,
	}
}

// CreatePaymentMethod adds a payable channel
// POST /api/admin/payment-methods
func (h *AdminHandler) CreatePaymentMethod(c echo.Context) error {
	var req paymentMethodRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cfg := req.toModel()
	if err := h.db.Create(&cfg).Error; err != nil {
		return err
	}

	h.invalidateCatalog(c)
	return respondCreated(c, cfg, "")
}

// UpdatePaymentMethod edits a payable channel
// PUT /api/admin/payment-methods/:id
func (h *AdminHandler) UpdatePaymentMethod(c echo.Context) error {
	var existing models.PaymentMethodConfig
	if err := h.db.First(&existing, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Payment method not found")
		}
		return err
	}

	var req paymentMethodRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cfg := req.toModel()
	cfg.ID = existing.ID
	// Select(*) so booleans turning false are persisted too
	if err := h.db.Model(&existing).Select("*").Omit("id", "created_at", "deleted_at").
		Updates(cfg).Error; err != nil {
		return err
	}

	h.invalidateCatalog(c)
	return respondOK(c, existing, "")
}

// --- Vouchers ---

// ListVouchers returns all vouchers with usage counters
// GET /api/admin/vouchers
func (h *AdminHandler) ListVouchers(c echo.Context) error {
	var vouchers []models.Voucher
	if err := h.db.Order("id desc").Find(&vouchers).Error; err != nil {
		return err
	}
	return respondOK(c, vouchers, "")
}

type voucherRequest struct {
	Code        string    `json:"code" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"required,oneof=percentage fixed"`
	Value       float64   `json:"value" validate:"required,gt=0"`
	MinPurchase float64   `json:"min_purchase" validate:"gte=0"`
	MaxDiscount float64   `json:"max_discount" validate:"gte=0"`
	ValidFrom   time.Time `json:"valid_from" validate:"required"`
	ValidUntil  time.Time `json:"valid_until" validate:"required,gtfield=ValidFrom"`
	UsageLimit  int       `json:"usage_limit" validate:"gte=0"`
	IsActive    bool      `json:"is_active"`
}

// CreateVoucher adds a discount code
// POST /api/admin/vouchers
func (h *AdminHandler) CreateVoucher(c echo.Context) error {
	var req voucherRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	voucher := models.Voucher{
		Code:        req.Code,
		Description: req.Description,
		Type:        models.VoucherType(req.Type),
		Value:       req.Value,
		MinPurchase: req.MinPurchase,
		MaxDiscount: req.MaxDiscount,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		UsageLimit:  req.UsageLimit,
		IsActive:    req.IsActive,
	}
	if err := h.db.Create(&voucher).Error; err != nil {
		return err
	}
	return respondCreated(c, voucher, "")
}

// UpdateVoucher edits a voucher. UsedCount is worker-owned and never
// writable from here.
// PUT /api/admin/vouchers/:id
func (h *AdminHandler) UpdateVoucher(c echo.Context) error {
	var voucher models.Voucher
	if err := h.db.First(&voucher, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Voucher not found")
		}
		return err
	}

	var req voucherRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.db.Model(&voucher).Updates(map[string]interface{}{
		"code":         req.Code,
		"description":  req.Description,
		"type":         req.Type,
		"value":        req.Value,
		"min_purchase": req.MinPurchase,
		"max_discount": req.MaxDiscount,
		"valid_from":   req.ValidFrom,
		"valid_until":  req.ValidUntil,
		"usage_limit":  req.UsageLimit,
		"is_active":    req.IsActive,
	}).Error
	if err != nil {
		return err
	}
	return respondOK(c, voucher, "")
}

// DeleteVoucher soft-deletes a voucher
// DELETE /api/admin/vouchers/:id
func (h *AdminHandler) DeleteVoucher(c echo.Context) error {
	result := h.db.Delete(&models.Voucher{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Voucher not found")
	}
	return respondOK(c, nil, "Voucher deleted")
}

// --- Manual payment approval ---

// ListPendingPayments returns pending payments on methods that need an admin
// to confirm the transfer
// GET /api/admin/payments/pending
func (h *AdminHandler) ListPendingPayments(c echo.Context) error {
	var payments []models.Payment
	err := h.db.
		Joins("JOIN payment_method_configs ON payment_method_configs.code = payments.method").
		Where("payments.status = ? AND payment_method_configs.requires_manual_approval = ?",
			models.PaymentStatusPending, true).
		Preload("Transaction").
		Preload("Transaction.User").
		Order("payments.created_at").
		Find(&payments).Error
	if err != nil {
		return err
	}
	return respondOK(c, payments, "")
}

// ApprovePayment confirms a manual transfer was received
// POST /api/admin/payments/:id/approve
func (h *AdminHandler) ApprovePayment(c echo.Context) error {
	var payment models.Payment
	if err := h.db.First(&payment, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
		}
		return err
	}

	if err := h.payments.SettlePayment(c.Request().Context(), payment.ID); err != nil {
		return err
	}
	return respondOK(c, nil, "Payment approved")
}

// RejectPayment cancels a manual payment attempt; the order stays payable
// POST /api/admin/payments/:id/reject
func (h *AdminHandler) RejectPayment(c echo.Context) error {
	var payment models.Payment
	if err := h.db.First(&payment, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
		}
		return err
	}

	if err := h.payments.MarkPaymentFailed(c.Request().Context(), payment.ID, models.PaymentStatusCancelled); err != nil {
		return err
	}
	return respondOK(c, nil, "Payment rejected")
}

// --- Analytics ---

// analyticsSummary is the dashboard overview payload
type analyticsSummary struct {
	TotalCustomers      int64        `json:"total_customers"`
	ActiveSubscriptions int64        `json:"active_subscriptions"`
	ConnectedSessions   int64        `json:"connected_sessions"`
	PaidTransactions    int64        `json:"paid_transactions"`
	PendingPayments     int64        `json:"pending_payments"`
	RevenueThisMonth    float64      `json:"revenue_this_month"`
	MessagesSent        int64        `json:"messages_sent"`
	TransactionsPerDay  []dailyCount `json:"transactions_per_day"`
}

type dailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// AnalyticsSummary returns the dashboard counters
// GET /api/admin/analytics/summary
func (h *AdminHandler) AnalyticsSummary(c echo.Context) error {
	var summary analyticsSummary

	if err := h.db.Model(&models.User{}).
		Where("user_type = ?", models.UserTypeCustomer).
		Count(&summary.TotalCustomers).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Subscription{}).
		Where("status = ? AND expires_at > ?", models.SubscriptionStatusActive, time.Now()).
		Count(&summary.ActiveSubscriptions).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.WhatsAppSession{}).
		Where("connection_status = ?", models.SessionStatusConnected).
		Count(&summary.ConnectedSessions).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Transaction{}).
		Where("status = ?", models.TransactionStatusPaid).
		Count(&summary.PaidTransactions).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Count(&summary.PendingPayments).Error; err != nil {
		return err
	}

	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day()).Truncate(24 * time.Hour)
	if err := h.db.Model(&models.Payment{}).
		Where("status = ? AND payment_date >= ?", models.PaymentStatusPaid, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&summary.RevenueThisMonth).Error; err != nil {
		return err
	}

	if err := h.db.Model(&models.WhatsAppSession{}).
		Select("COALESCE(SUM(messages_sent), 0)").
		Scan(&summary.MessagesSent).Error; err != nil {
		return err
	}

	if err := h.db.Model(&models.Transaction{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", time.Now().AddDate(0, 0, -30)).
		Group("DATE(created_at)").
		Order("day").
		Scan(&summary.TransactionsPerDay).Error; err != nil {
		return err
	}

	return respondOK(c, summary, "")
}
