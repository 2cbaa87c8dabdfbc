package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireCustomer verifies the customer JWT issued after OTP verification
// and puts the user id and phone into the request context.
func RequireCustomer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			claims, err := ParseCustomerToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set("userID", claims.UserID)
			c.Set("userPhone", claims.Phone)

			return next(c)
		}
	}
}

// OptionalCustomer parses the customer token when present but never rejects.
// Checkout's public steps use it to skip OTP for returning customers.
func OptionalCustomer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := bearerToken(c); token != "" {
				if claims, err := ParseCustomerToken(token); err == nil {
					c.Set("userID", claims.UserID)
					c.Set("userPhone", claims.Phone)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin verifies a Firebase ID token for the admin dashboard API.
func RequireAdmin(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Admin auth not configured")
			}

			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			decodedToken, err := authClient.VerifyIDToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin token")
			}

			c.Set("adminUID", decodedToken.UID)
			if email, ok := decodedToken.Claims["email"].(string); ok {
				c.Set("adminEmail", email)
			}

			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated customer id, or 0.
func UserIDFromContext(c echo.Context) uint {
	if val := c.Get("userID"); val != nil {
		if id, ok := val.(uint); ok {
			return id
		}
	}
	return 0
}
