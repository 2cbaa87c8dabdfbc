package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the uniform failure envelope. Nothing escapes to Echo's
// default handler; every error a route returns becomes this shape.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// CustomErrorHandler converts every error reaching the Echo boundary into
// the JSON error envelope.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."
	errorCode := ""

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code

		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			switch code {
			case http.StatusNotFound:
				message = "The resource you're looking for doesn't exist."
			case http.StatusForbidden:
				message = "You don't have permission to access this resource."
			case http.StatusUnauthorized:
				message = "Please log in to continue."
			case http.StatusBadRequest:
				message = "The request could not be processed."
			}
		}

		if he.Internal != nil {
			if coded, ok := he.Internal.(*CodedError); ok {
				errorCode = coded.Code
			}
		}
	}

	// Log the error
	c.Logger().Error(err)

	if jsonErr := c.JSON(code, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    errorCode,
	}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}

// CodedError carries a machine-readable error code (e.g. TRANSACTION_INVALID)
// alongside an HTTPError.
type CodedError struct {
	Code string
}

func (e *CodedError) Error() string {
	return e.Code
}

// NewCodedHTTPError builds an echo.HTTPError whose envelope will include the
// given error code.
func NewCodedHTTPError(status int, code, message string) *echo.HTTPError {
	he := echo.NewHTTPError(status, message)
	he.Internal = &CodedError{Code: code}
	return he
}
