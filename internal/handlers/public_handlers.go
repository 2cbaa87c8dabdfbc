package handlers

import (
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
	"wagate_app_echo/internal/services"
)

// PublicHandler serves the unauthenticated catalog endpoints. Both lists are
// admin-managed and change rarely, so they are served through the cache.
type PublicHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewPublicHandler(db *gorm.DB, cache *services.RedisCache) *PublicHandler {
	return &PublicHandler{db: db, cache: cache}
}

const catalogCacheTTL = 5 * time.Minute

// ListPackages returns the purchasable packages
// GET /api/packages
func (h *PublicHandler) ListPackages(c echo.Context) error {
	packages, err := services.GetOrSet(h.cache, c.Request().Context(), "catalog:packages", catalogCacheTTL,
		func() ([]models.WhatsAppPackage, error) {
			var pkgs []models.WhatsAppPackage
			err := h.db.Where("is_active = ?", true).Order("price").Find(&pkgs).Error
			return pkgs, err
		})
	if err != nil {
		return err
	}
	return respondOK(c, packages, "")
}

// paymentMethodView is the customer-facing shape of a payment method. Fee
// configuration internals stay admin-only; bank details only appear on
// manual transfer methods.
type paymentMethodView struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	IsGateway         bool   `json:"is_gateway"`
	BankName          string `json:"bank_name,omitempty"`
	BankAccountNumber string `json:"bank_account_number,omitempty"`
	BankAccountName   string `json:"bank_account_name,omitempty"`
}

// ListPaymentMethods returns the active payment methods
// GET /api/payment-methods
func (h *PublicHandler) ListPaymentMethods(c echo.Context) error {
	views, err := services.GetOrSet(h.cache, c.Request().Context(), "catalog:payment_methods", catalogCacheTTL,
		func() ([]paymentMethodView, error) {
			var configs []models.PaymentMethodConfig
			if err := h.db.Where("is_active = ?", true).Order("name").Find(&configs).Error; err != nil {
				return nil, err
			}

			views := make([]paymentMethodView, 0, len(configs))
			for _, cfg := range configs {
				view := paymentMethodView{
					Code:      cfg.Code,
					Name:      cfg.Name,
					IsGateway: cfg.IsGateway,
				}
				if !cfg.IsGateway {
					view.BankName = cfg.BankName
					view.BankAccountNumber = cfg.BankAccountNumber
					view.BankAccountName = cfg.BankAccountName
				}
				views = append(views, view)
			}
			return views, nil
		})
	if err != nil {
		return err
	}
	return respondOK(c, views, "")
}
