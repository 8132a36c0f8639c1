package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

type contextKeyType string

const customerIDKey contextKeyType = "customer_id"

// Claims are the customer claims carried by a storefront access token.
type Claims struct {
	CustomerID string
	Email      string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// HMACValidator returns a TokenValidator for HS256-signed tokens. The customer
// id is read from the customer_id claim with sub as fallback.
func HMACValidator(secret string) TokenValidator {
	return func(tokenString string) (*Claims, error) {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return nil, fmt.Errorf("parse token: %w", err)
		}
		mc, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return nil, errors.New("invalid token claims")
		}

		claims := &Claims{}
		claims.CustomerID, _ = mc["customer_id"].(string)
		if claims.CustomerID == "" {
			claims.CustomerID, _ = mc.GetSubject()
		}
		claims.Email, _ = mc["email"].(string)
		if claims.CustomerID == "" {
			return nil, errors.New("token carries no customer id")
		}
		return claims, nil
	}
}

// Auth resolves the logged-in customer from the Authorization header.
// Storefront pages are public, so a missing header passes through as a guest
// request. A malformed or invalid token is rejected with 401.
func Auth(validate TokenValidator, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid authorization header format"), l)
				return
			}

			claims, err := validate(parts[1])
			if err != nil {
				l.WarnContext(r.Context(), "invalid access token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), l)
				return
			}

			ctx := context.WithValue(r.Context(), customerIDKey, claims.CustomerID)
			ctx = logger.WithCustomerID(ctx, claims.CustomerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerIDFromContext returns the authenticated customer id, or "" for guests.
func CustomerIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(customerIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCustomerID stores a customer id the way Auth does. Used by tests and by
// handlers that resolve the customer from a context token.
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}
