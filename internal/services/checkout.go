package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
)

// CheckoutStep is the wizard position: contact capture, OTP verification,
// order review, payment method selection.
type CheckoutStep int

const (
	StepContact      CheckoutStep = 1
	StepVerification CheckoutStep = 2
	StepCheckout     CheckoutStep = 3
	StepPayment      CheckoutStep = 4
)

var (
	ErrCheckoutNotFound   = errors.New("checkout session not found")
	ErrContactIncomplete  = errors.New("name and phone number are required")
	ErrPhoneNotVerified   = errors.New("phone number is not verified")
	ErrNoPackageSelected  = errors.New("no package selected")
	ErrWrongStep          = errors.New("action not allowed in current step")
	ErrPackageUnavailable = errors.New("package not found or inactive")
)

// ContactForm is the customer contact captured in step 1
type ContactForm struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CheckoutState is the serializable snapshot of one checkout wizard run.
// It survives page reloads via Redis; the reducer below is the only thing
// that mutates it.
type CheckoutState struct {
	ID            string       `json:"id"`
	Step          CheckoutStep `json:"step"`
	Contact       ContactForm  `json:"contact"`
	PhoneVerified bool         `json:"phone_verified"`
	UserID        uint         `json:"user_id"`

	PackageID uint `json:"package_id"`
	Quantity  int  `json:"quantity"`

	VoucherCode    string  `json:"voucher_code"`
	DiscountAmount float64 `json:"discount_amount"`

	PaymentMethod string `json:"payment_method"`
	TransactionID uint   `json:"transaction_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckoutEvent is one step-transition input to the reducer
type CheckoutEvent interface {
	checkoutEvent()
}

type EventSetContact struct {
	Name  string
	Phone string
	Email string
}

// EventPhoneVerified marks the contact's phone as OTP-verified and binds the
// checkout to a user account. Also emitted directly for already-authenticated
// callers, which skips the verification step.
type EventPhoneVerified struct {
	UserID uint
}

type EventSelectPackage struct {
	PackageID uint
	Quantity  int
}

type EventApplyVoucher struct {
	Code     string
	Discount float64
}

type EventRemoveVoucher struct{}

type EventSelectPaymentMethod struct {
	Method string
}

// EventSubmitted records that the order was turned into a Transaction
type EventSubmitted struct {
	TransactionID uint
}

func (EventSetContact) checkoutEvent()          {}
func (EventPhoneVerified) checkoutEvent()       {}
func (EventSelectPackage) checkoutEvent()       {}
func (EventApplyVoucher) checkoutEvent()        {}
func (EventRemoveVoucher) checkoutEvent()       {}
func (EventSelectPaymentMethod) checkoutEvent() {}
func (EventSubmitted) checkoutEvent()           {}

// Apply is the pure checkout reducer. Guards block invalid transitions with
// typed errors; the returned state is a copy, the input is never mutated.
func Apply(state CheckoutState, event CheckoutEvent) (CheckoutState, error) {
	next := state

	switch e := event.(type) {
	case EventSetContact:
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Phone) == "" {
			return state, ErrContactIncomplete
		}
		next.Contact = ContactForm{Name: e.Name, Phone: NormalizePhone(e.Phone), Email: e.Email}
		// Changing the phone invalidates a previous verification
		if next.Contact.Phone != state.Contact.Phone {
			next.PhoneVerified = false
			next.UserID = 0
		}
		if !next.PhoneVerified {
			next.Step = StepVerification
		}

	case EventPhoneVerified:
		if state.Contact.Phone == "" {
			return state, ErrContactIncomplete
		}
		next.PhoneVerified = true
		next.UserID = e.UserID
		next.Step = StepCheckout

	case EventSelectPackage:
		if !state.PhoneVerified {
			return state, ErrPhoneNotVerified
		}
		if state.Step < StepCheckout {
			return state, ErrWrongStep
		}
		next.PackageID = e.PackageID
		next.Quantity = e.Quantity
		if next.Quantity <= 0 {
			next.Quantity = 1
		}
		// A different cart invalidates a previously applied voucher
		next.VoucherCode = ""
		next.DiscountAmount = 0

	case EventApplyVoucher:
		if state.Step < StepCheckout {
			return state, ErrWrongStep
		}
		if state.PackageID == 0 {
			return state, ErrNoPackageSelected
		}
		next.VoucherCode = e.Code
		next.DiscountAmount = e.Discount

	case EventRemoveVoucher:
		if state.Step < StepCheckout {
			return state, ErrWrongStep
		}
		next.VoucherCode = ""
		next.DiscountAmount = 0

	case EventSubmitted:
		if state.Step != StepCheckout {
			return state, ErrWrongStep
		}
		if state.PackageID == 0 {
			return state, ErrNoPackageSelected
		}
		next.TransactionID = e.TransactionID
		next.Step = StepPayment

	case EventSelectPaymentMethod:
		if state.Step != StepPayment {
			return state, ErrWrongStep
		}
		next.PaymentMethod = e.Method

	default:
		return state, fmt.Errorf("unknown checkout event %T", event)
	}

	next.UpdatedAt = time.Now()
	return next, nil
}

const checkoutTTL = 24 * time.Hour

// CheckoutService persists checkout snapshots in Redis and runs the reducer
// together with the DB lookups each transition needs.
type CheckoutService struct {
	db       *gorm.DB
	cache    *RedisCache
	vouchers *VoucherService
}

func NewCheckoutService(db *gorm.DB, cache *RedisCache, vouchers *VoucherService) *CheckoutService {
	return &CheckoutService{db: db, cache: cache, vouchers: vouchers}
}

func checkoutKey(id string) string {
	return "checkout:" + id
}

// Start creates a fresh checkout session at the contact step.
func (s *CheckoutService) Start(ctx context.Context) (*CheckoutState, error) {
	now := time.Now()
	state := CheckoutState{
		ID:        uuid.NewString(),
		Step:      StepContact,
		Quantity:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Load fetches a checkout snapshot by id.
func (s *CheckoutService) Load(ctx context.Context, id string) (*CheckoutState, error) {
	var state CheckoutState
	if err := s.cache.Get(ctx, checkoutKey(id), &state); err != nil {
		return nil, ErrCheckoutNotFound
	}
	return &state, nil
}

func (s *CheckoutService) save(ctx context.Context, state CheckoutState) error {
	return s.cache.Set(ctx, checkoutKey(state.ID), state, checkoutTTL)
}

// Dispatch loads a snapshot, applies one event, and persists the result.
func (s *CheckoutService) Dispatch(ctx context.Context, id string, event CheckoutEvent) (*CheckoutState, error) {
	state, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := Apply(*state, event)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return &next, nil
}

// SetContact records the contact form. Callers already authenticated skip the
// verification step entirely.
func (s *CheckoutService) SetContact(ctx context.Context, id string, form ContactForm, authenticatedUserID uint) (*CheckoutState, error) {
	state, err := s.Dispatch(ctx, id, EventSetContact(form))
	if err != nil {
		return nil, err
	}

	if authenticatedUserID != 0 && !state.PhoneVerified {
		var user models.User
		if err := s.db.First(&user, authenticatedUserID).Error; err == nil &&
			user.Phone == state.Contact.Phone {
			return s.Dispatch(ctx, id, EventPhoneVerified{UserID: user.ID})
		}
	}

	return state, nil
}

// SelectPackage validates the package against the catalog and records it.
func (s *CheckoutService) SelectPackage(ctx context.Context, id string, packageID uint, quantity int) (*CheckoutState, error) {
	var pkg models.WhatsAppPackage
	if err := s.db.First(&pkg, packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageUnavailable
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrPackageUnavailable
	}

	return s.Dispatch(ctx, id, EventSelectPackage{PackageID: packageID, Quantity: quantity})
}

// ApplyVoucher evaluates a code against the current cart total and records
// the resulting discount in the snapshot.
func (s *CheckoutService) ApplyVoucher(ctx context.Context, id string, code string) (*CheckoutState, error) {
	state, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.PackageID == 0 {
		return nil, ErrNoPackageSelected
	}

	var pkg models.WhatsAppPackage
	if err := s.db.First(&pkg, state.PackageID).Error; err != nil {
		return nil, ErrPackageUnavailable
	}

	amount := Round2(pkg.Price * float64(state.Quantity))
	_, discount, err := s.vouchers.Evaluate(code, amount)
	if err != nil {
		return nil, err
	}

	return s.Dispatch(ctx, id, EventApplyVoucher{Code: code, Discount: discount})
}

// Submit turns the snapshot into a Transaction in `created` status with a
// 24-hour payment deadline, and advances the wizard to the payment step.
func (s *CheckoutService) Submit(ctx context.Context, id string, userID uint) (*CheckoutState, *models.Transaction, error) {
	state, err := s.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if state.Step != StepCheckout {
		return nil, nil, ErrWrongStep
	}
	if state.UserID != userID {
		return nil, nil, ErrCheckoutNotFound
	}
	if state.PackageID == 0 {
		return nil, nil, ErrNoPackageSelected
	}

	var pkg models.WhatsAppPackage
	if err := s.db.First(&pkg, state.PackageID).Error; err != nil {
		return nil, nil, ErrPackageUnavailable
	}

	amount := Round2(pkg.Price * float64(state.Quantity))
	discount := state.DiscountAmount

	var voucherID *uint
	if state.VoucherCode != "" {
		// Re-evaluate at submission time; the voucher may have expired since
		voucher, reDiscount, err := s.vouchers.Evaluate(state.VoucherCode, amount)
		if err != nil {
			return nil, nil, err
		}
		discount = reDiscount
		voucherID = &voucher.ID
	}

	transaction := models.Transaction{
		UserID:             userID,
		Status:             models.TransactionStatusCreated,
		Amount:             amount,
		OriginalAmount:     amount,
		DiscountAmount:     discount,
		TotalAfterDiscount: Round2(amount - discount),
		Currency:           "IDR",
		ExpiresAt:          time.Now().Add(24 * time.Hour),
		VoucherID:          voucherID,
		Items: []models.TransactionItem{
			{
				PackageID:   pkg.ID,
				PackageName: pkg.Name,
				UnitPrice:   pkg.Price,
				Quantity:    state.Quantity,
				Subtotal:    amount,
			},
		},
	}

	if err := s.db.Create(&transaction).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	next, err := s.Dispatch(ctx, id, EventSubmitted{TransactionID: transaction.ID})
	if err != nil {
		return nil, nil, err
	}
	return next, &transaction, nil
}
