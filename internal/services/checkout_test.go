package services

import (
	"errors"
	"testing"
)

func verifiedState() CheckoutState {
	return CheckoutState{
		ID:            "test",
		Step:          StepCheckout,
		Contact:       ContactForm{Name: "Budi", Phone: "6281234567890"},
		PhoneVerified: true,
		UserID:        7,
		Quantity:      1,
	}
}

func TestApplyContactAndVerification(t *testing.T) {
	state := CheckoutState{ID: "test", Step: StepContact, Quantity: 1}

	// Missing phone blocks advancement
	_, err := Apply(state, EventSetContact{Name: "Budi"})
	if !errors.Is(err, ErrContactIncomplete) {
		t.Fatalf("expected ErrContactIncomplete, got %v", err)
	}

	// Valid contact moves to verification and normalizes the phone
	state, err = Apply(state, EventSetContact{Name: "Budi", Phone: "081234567890"})
	if err != nil {
		t.Fatalf("SetContact failed: %v", err)
	}
	if state.Step != StepVerification {
		t.Errorf("step = %d; want %d", state.Step, StepVerification)
	}
	if state.Contact.Phone != "6281234567890" {
		t.Errorf("phone = %s; want normalized 6281234567890", state.Contact.Phone)
	}

	// Verification binds the user and moves to checkout
	state, err = Apply(state, EventPhoneVerified{UserID: 7})
	if err != nil {
		t.Fatalf("PhoneVerified failed: %v", err)
	}
	if state.Step != StepCheckout || !state.PhoneVerified || state.UserID != 7 {
		t.Errorf("unexpected state after verification: %+v", state)
	}

	// Changing the phone resets verification
	state, err = Apply(state, EventSetContact{Name: "Budi", Phone: "089999999999"})
	if err != nil {
		t.Fatalf("SetContact failed: %v", err)
	}
	if state.PhoneVerified || state.UserID != 0 || state.Step != StepVerification {
		t.Errorf("verification not reset after phone change: %+v", state)
	}
}

func TestApplyVerificationRequiresContact(t *testing.T) {
	state := CheckoutState{ID: "test", Step: StepContact}
	if _, err := Apply(state, EventPhoneVerified{UserID: 1}); !errors.Is(err, ErrContactIncomplete) {
		t.Errorf("expected ErrContactIncomplete, got %v", err)
	}
}

func TestApplyPackageSelection(t *testing.T) {
	// Unverified callers cannot build a cart
	state := CheckoutState{ID: "test", Step: StepContact}
	if _, err := Apply(state, EventSelectPackage{PackageID: 1}); !errors.Is(err, ErrPhoneNotVerified) {
		t.Fatalf("expected ErrPhoneNotVerified, got %v", err)
	}

	state = verifiedState()
	state, err := Apply(state, EventSelectPackage{PackageID: 3, Quantity: 0})
	if err != nil {
		t.Fatalf("SelectPackage failed: %v", err)
	}
	if state.PackageID != 3 || state.Quantity != 1 {
		t.Errorf("package = %d qty = %d; want 3, 1", state.PackageID, state.Quantity)
	}

	// Re-selecting drops a previously applied voucher
	state.VoucherCode = "HEMAT10"
	state.DiscountAmount = 5000
	state, err = Apply(state, EventSelectPackage{PackageID: 4, Quantity: 2})
	if err != nil {
		t.Fatalf("SelectPackage failed: %v", err)
	}
	if state.VoucherCode != "" || state.DiscountAmount != 0 {
		t.Errorf("voucher not cleared after cart change: %+v", state)
	}
}

func TestApplyVoucherEvents(t *testing.T) {
	state := verifiedState()

	// Voucher needs a cart first
	if _, err := Apply(state, EventApplyVoucher{Code: "HEMAT10", Discount: 5000}); !errors.Is(err, ErrNoPackageSelected) {
		t.Fatalf("expected ErrNoPackageSelected, got %v", err)
	}

	state.PackageID = 3
	state, err := Apply(state, EventApplyVoucher{Code: "HEMAT10", Discount: 5000})
	if err != nil {
		t.Fatalf("ApplyVoucher failed: %v", err)
	}
	if state.VoucherCode != "HEMAT10" || state.DiscountAmount != 5000 {
		t.Errorf("voucher not recorded: %+v", state)
	}

	state, err = Apply(state, EventRemoveVoucher{})
	if err != nil {
		t.Fatalf("RemoveVoucher failed: %v", err)
	}
	if state.VoucherCode != "" || state.DiscountAmount != 0 {
		t.Errorf("voucher not removed: %+v", state)
	}
}

func TestApplySubmitAndPaymentMethod(t *testing.T) {
	// Submission requires a cart
	state := verifiedState()
	if _, err := Apply(state, EventSubmitted{TransactionID: 10}); !errors.Is(err, ErrNoPackageSelected) {
		t.Fatalf("expected ErrNoPackageSelected, got %v", err)
	}

	state.PackageID = 3
	state, err := Apply(state, EventSubmitted{TransactionID: 10})
	if err != nil {
		t.Fatalf("Submitted failed: %v", err)
	}
	if state.Step != StepPayment || state.TransactionID != 10 {
		t.Errorf("unexpected state after submit: %+v", state)
	}

	// Double submission is blocked
	if _, err := Apply(state, EventSubmitted{TransactionID: 11}); !errors.Is(err, ErrWrongStep) {
		t.Errorf("expected ErrWrongStep on resubmit, got %v", err)
	}

	state, err = Apply(state, EventSelectPaymentMethod{Method: "bca_va"})
	if err != nil {
		t.Fatalf("SelectPaymentMethod failed: %v", err)
	}
	if state.PaymentMethod != "bca_va" {
		t.Errorf("payment method = %s; want bca_va", state.PaymentMethod)
	}

	// Method selection before the payment step is blocked
	early := verifiedState()
	if _, err := Apply(early, EventSelectPaymentMethod{Method: "bca_va"}); !errors.Is(err, ErrWrongStep) {
		t.Errorf("expected ErrWrongStep, got %v", err)
	}
}
