package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"wagate_app_echo/internal/middleware"
	"wagate_app_echo/internal/services"
)

// Response is the uniform success envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondOK(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

func respondCreated(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusCreated, Response{Success: true, Data: data, Message: message})
}

var validate = validator.New()

// bindAndValidate binds the JSON body and runs struct validation, turning
// failures into a 400 that lists the offending fields.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return echo.NewHTTPError(http.StatusBadRequest,
				"Validation failed: "+strings.Join(fields, ", "))
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Validation failed")
	}
	return nil
}

// mapServiceError converts service-layer sentinels into HTTP errors with the
// right status, code, and a customer-facing message. Unknown errors fall
// through as 500s to the central error handler.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrTransactionInvalid):
		return middleware.NewCodedHTTPError(http.StatusBadRequest, "TRANSACTION_INVALID",
			"Transaksi tidak dapat dibayar: "+err.Error())
	case errors.Is(err, services.ErrPendingPaymentExists):
		return echo.NewHTTPError(http.StatusBadRequest,
			"Masih ada pembayaran yang menunggu untuk transaksi ini. Selesaikan atau tunggu hingga kedaluwarsa.")
	case errors.Is(err, services.ErrAmountLimit):
		return echo.NewHTTPError(http.StatusBadRequest,
			"Jumlah pembayaran di luar batas metode ini. Silakan pilih metode pembayaran lain.")
	case errors.Is(err, services.ErrMethodUnavailable):
		return echo.NewHTTPError(http.StatusBadRequest, "Metode pembayaran tidak tersedia.")
	case errors.Is(err, services.ErrCheckoutNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Sesi checkout tidak ditemukan atau sudah kedaluwarsa.")
	case errors.Is(err, services.ErrContactIncomplete),
		errors.Is(err, services.ErrPhoneNotVerified),
		errors.Is(err, services.ErrNoPackageSelected),
		errors.Is(err, services.ErrWrongStep),
		errors.Is(err, services.ErrPackageUnavailable):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrVoucherNotFound),
		errors.Is(err, services.ErrVoucherInactive),
		errors.Is(err, services.ErrVoucherNotStarted),
		errors.Is(err, services.ErrVoucherExpired),
		errors.Is(err, services.ErrVoucherExhausted),
		errors.Is(err, services.ErrVoucherMinPurchase):
		return echo.NewHTTPError(http.StatusBadRequest, "Voucher tidak dapat digunakan: "+err.Error())
	case errors.Is(err, services.ErrOTPCooldown),
		errors.Is(err, services.ErrOTPNotFound),
		errors.Is(err, services.ErrOTPMismatch),
		errors.Is(err, services.ErrOTPTooManyTries):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNoActiveSubscription):
		return echo.NewHTTPError(http.StatusForbidden, "Tidak ada langganan aktif.")
	case errors.Is(err, services.ErrSessionQuotaReached):
		return echo.NewHTTPError(http.StatusForbidden, "Kuota sesi untuk paket Anda sudah habis.")
	case errors.Is(err, services.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Sesi tidak ditemukan.")
	default:
		return err
	}
}
