package services

import "testing"

func TestDuitkuInquirySignature(t *testing.T) {
	// MD5("D0001ORDER-1100000secret")
	got := DuitkuInquirySignature("D0001", "ORDER-1", 100000, "secret")
	want := "a4cf14256b9bad47065ae3b6f77777a0"
	if got != want {
		t.Errorf("DuitkuInquirySignature = %s; want %s", got, want)
	}
}

func TestVerifyCallbackSignature(t *testing.T) {
	s := &DuitkuService{merchantCode: "D0001", apiKey: "secret"}

	valid := DuitkuCallbackSignature("D0001", "100000", "ORDER-1", "secret")

	tests := []struct {
		name         string
		merchantCode string
		amount       string
		orderID      string
		signature    string
		expected     bool
	}{
		{"valid signature", "D0001", "100000", "ORDER-1", valid, true},
		{"wrong merchant code", "D0002", "100000", "ORDER-1", valid, false},
		{"tampered amount", "D0001", "999999", "ORDER-1", valid, false},
		{"tampered order id", "D0001", "100000", "ORDER-2", valid, false},
		{"garbage signature", "D0001", "100000", "ORDER-1", "deadbeef", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.VerifyCallbackSignature(tt.merchantCode, tt.amount, tt.orderID, tt.signature)
			if got != tt.expected {
				t.Errorf("VerifyCallbackSignature = %v; want %v", got, tt.expected)
			}
		})
	}
}

func TestIsAmountLimitMessage(t *testing.T) {
	tests := []struct {
		msg      string
		expected bool
	}{
		{"Payment amount is below the minimum", true},
		{"Amount exceeds maximum for this channel", true},
		{"Transaction amount limit reached", true},
		{"Invalid signature", false},
		{"Merchant not found", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isAmountLimitMessage(tt.msg); got != tt.expected {
			t.Errorf("isAmountLimitMessage(%q) = %v; want %v", tt.msg, got, tt.expected)
		}
	}
}
