package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"amani-server/configs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"
const emailIDKey = "user_email"

// JWTMiddleware extracts the Bearer token from the Authorization header,
// verifies it against the shared HS256 secret, and stores the sub claim (the
// user id) and email claim in the request context.
func JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header format"})
		}
		tokenStr := parts[1]

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(configs.Configs.Secrets.JwtSecret), nil
		})
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "sub claim not found in token"})
		}
		email, _ := claims["email"].(string)

		c.Set(userIDKey, sub)
		c.Set(emailIDKey, email)
		return next(c)
	}
}

// GetUserIDFromContext extracts the user id stored by the middleware.
func GetUserIDFromContext(c echo.Context) (string, error) {
	uid := c.Get(userIDKey)
	if uid == nil {
		return "", errors.New("user id not found in context")
	}
	userID, ok := uid.(string)
	if !ok {
		return "", errors.New("user id has invalid type")
	}
	return userID, nil
}

// GetEmailFromContext extracts the email stored by the middleware.
func GetEmailFromContext(c echo.Context) (string, error) {
	email := c.Get(emailIDKey)
	if email == nil {
		return "", errors.New("email not found in context")
	}
	emailStr, ok := email.(string)
	if !ok {
		return "", errors.New("email has invalid type")
	}
	return emailStr, nil
}
