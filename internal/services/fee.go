package services

import (
	"math"

	"wagate_app_echo/internal/models"
)

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateServiceFee computes the gateway surcharge for paying `amount`
// through the given method. Pure function: inactive methods and methods
// without a fee value always cost 0; percentage fees are clamped to
// [MinFee, MaxFee] when those are set (> 0).
func CalculateServiceFee(amount float64, cfg models.PaymentMethodConfig) float64 {
	if !cfg.IsActive || cfg.FeeValue <= 0 {
		return 0
	}

	var fee float64
	switch cfg.FeeType {
	case models.FeeTypePercentage:
		fee = amount * cfg.FeeValue / 100
		if cfg.MinFee > 0 && fee < cfg.MinFee {
			fee = cfg.MinFee
		}
		if cfg.MaxFee > 0 && fee > cfg.MaxFee {
			fee = cfg.MaxFee
		}
	case models.FeeTypeFixed:
		fee = cfg.FeeValue
	default:
		return 0
	}

	return Round2(fee)
}
