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

// CheckoutHandler drives the checkout wizard: contact capture, phone
// verification, package selection, voucher, and submission.
type CheckoutHandler struct {
	db       *gorm.DB
	checkout *services.CheckoutService
	otp      *services.OTPService
}

func NewCheckoutHandler(db *gorm.DB, checkout *services.CheckoutService, otp *services.OTPService) *CheckoutHandler {
	return &CheckoutHandler{db: db, checkout: checkout, otp: otp}
}

// Start creates a new checkout session
// POST /api/checkout/start
func (h *CheckoutHandler) Start(c echo.Context) error {
	state, err := h.checkout.Start(c.Request().Context())
	if err != nil {
		return err
	}
	return respondCreated(c, state, "")
}

// GetState returns the current wizard snapshot
// GET /api/checkout/:id
func (h *CheckoutHandler) GetState(c echo.Context) error {
	state, err := h.checkout.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, state, "")
}

type contactRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

// SetContact records the contact form. A returning customer with a valid
// token whose phone matches skips the verification step.
// POST /api/checkout/:id/contact
func (h *CheckoutHandler) SetContact(c echo.Context) error {
	var req contactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	form := services.ContactForm{Name: req.Name, Phone: req.Phone, Email: req.Email}
	state, err := h.checkout.SetContact(c.Request().Context(), c.Param("id"), form, middleware.UserIDFromContext(c))
	if err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, state, "")
}

// RequestOTP sends a verification code to the checkout's phone number
// POST /api/checkout/:id/otp/request
func (h *CheckoutHandler) RequestOTP(c echo.Context) error {
	state, err := h.checkout.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	if state.Contact.Phone == "" {
		return mapServiceError(services.ErrContactIncomplete)
	}

	if err := h.otp.Request(c.Request().Context(), state.Contact.Phone); err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, nil, "Kode verifikasi telah dikirim via WhatsApp")
}

type verifyOTPRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// VerifyOTP checks the code, finds or creates the customer account for the
// phone, binds it to the checkout, and issues the customer token.
// POST /api/checkout/:id/otp/verify
func (h *CheckoutHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	state, err := h.checkout.Load(ctx, c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	if state.Contact.Phone == "" {
		return mapServiceError(services.ErrContactIncomplete)
	}

	if err := h.otp.Verify(ctx, state.Contact.Phone, req.Code); err != nil {
		return mapServiceError(err)
	}

	user, err := h.findOrCreateUser(state.Contact)
	if err != nil {
		return err
	}

	state, err = h.checkout.Dispatch(ctx, c.Param("id"), services.EventPhoneVerified{UserID: user.ID})
	if err != nil {
		return mapServiceError(err)
	}

	token, err := middleware.IssueCustomerToken(user.ID, user.Phone)
	if err != nil {
		return err
	}

	return respondOK(c, map[string]interface{}{
		"token": token,
		"state": state,
	}, "Nomor berhasil diverifikasi")
}

func (h *CheckoutHandler) findOrCreateUser(contact services.ContactForm) (*models.User, error) {
	var user models.User
	err := h.db.Where("phone = ?", contact.Phone).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:     contact.Name,
			Phone:    contact.Phone,
			Email:    contact.Email,
			UserType: models.UserTypeCustomer,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	default:
		return nil, err
	}
}

type selectPackageRequest struct {
	PackageID uint `json:"package_id" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// SelectPackage puts a package into the cart
// POST /api/checkout/:id/package
func (h *CheckoutHandler) SelectPackage(c echo.Context) error {
	var req selectPackageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	state, err := h.checkout.SelectPackage(c.Request().Context(), c.Param("id"), req.PackageID, req.Quantity)
	if err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, state, "")
}

type applyVoucherRequest struct {
	Code string `json:"code" validate:"required"`
}

// ApplyVoucher validates a discount code against the cart
// POST /api/checkout/:id/voucher
func (h *CheckoutHandler) ApplyVoucher(c echo.Context) error {
	var req applyVoucherRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	state, err := h.checkout.ApplyVoucher(c.Request().Context(), c.Param("id"), req.Code)
	if err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, state, "Voucher diterapkan")
}

// RemoveVoucher drops the applied discount code
// DELETE /api/checkout/:id/voucher
func (h *CheckoutHandler) RemoveVoucher(c echo.Context) error {
	state, err := h.checkout.Dispatch(c.Request().Context(), c.Param("id"), services.EventRemoveVoucher{})
	if err != nil {
		return mapServiceError(err)
	}
	return respondOK(c, state, "")
}

// Submit turns the cart into an order and advances to the payment step
// POST /api/checkout/:id/submit
func (h *CheckoutHandler) Submit(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please verify your phone number first")
	}

	state, transaction, err := h.checkout.Submit(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return mapServiceError(err)
	}

	return respondCreated(c, map[string]interface{}{
		"state":       state,
		"transaction": transaction,
	}, "Pesanan dibuat, silakan pilih metode pembayaran")
}
