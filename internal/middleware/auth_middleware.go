package middleware

import (
	"net/http"
	"strings"

	"marketplace/domain"
	"marketplace/pkg/logger"
	jsonres "marketplace/pkg/response"
	"marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", false
	}
	return tokenParts[1], true
}

// AuthMiddleware basic JWT authentication
func AuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing authorization header", nil,
				))
			}

			tokenString, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid authorization format", nil,
				))
			}

			claims, err := utils.ParseJWT(tokenString, secret)
			if err != nil {
				logger.Warn("Failed to parse JWT", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			if claims.UserID == "" {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid user ID in token", nil,
				))
			}

			c.Set("user_id", claims.UserID)
			c.Set("role", claims.Role)
			c.Set("token", tokenString)

			return next(c)
		}
	}
}

// OptionalAuth identifies the shopper when a valid token is present and
// falls back to the anonymous user otherwise. It never rejects a request.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", domain.AnonymousUserID)

			tokenString, ok := bearerToken(c)
			if !ok {
				return next(c)
			}

			claims, err := utils.ParseJWT(tokenString, secret)
			if err != nil || claims.UserID == "" {
				logger.Debug("Ignoring invalid token on optional auth route", "error", err)
				return next(c)
			}

			c.Set("user_id", claims.UserID)
			c.Set("role", claims.Role)
			c.Set("token", tokenString)

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := c.Get("role")
			roleStr, ok := role.(string)
			if !ok || strings.ToUpper(roleStr) != "ADMIN" {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}

// VendorOrAdmin lets catalog owners manage products.
func VendorOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, ok := c.Get("role").(string)
			if !ok {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid role", nil,
				))
			}

			switch strings.ToUpper(roleStr) {
			case "ADMIN", "VENDOR":
				return next(c)
			}

			return c.JSON(http.StatusForbidden, jsonres.Error(
				"FORBIDDEN", "Vendor or admin access required", nil,
			))
		}
	}
}
