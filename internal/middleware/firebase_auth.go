package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

// Context keys set by FirebaseAuthMiddleware
const (
	FirebaseUIDKey   = "firebaseUID"
	FirebaseTokenKey = "firebaseToken"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUserLookup maps a Firebase UID to a local user
type FirebaseUserLookup interface {
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
}

// FirebaseAuthMiddleware creates an Echo middleware to verify Firebase ID tokens.
// The Firebase UID and token are stored in the context. When the account is
// linked to a local user, that user's claims are stored under ClaimsKey the
// same way JWTAuthMiddleware does; an unlinked account passes without them.
func FirebaseAuthMiddleware(verifier TokenVerifier, users FirebaseUserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			idToken, ok := bearer(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}
			c.Set(FirebaseUIDKey, token.UID)
			c.Set(FirebaseTokenKey, token)

			user, err := users.GetUserByFirebaseUID(token.UID)
			switch {
			case err == nil:
				c.Set(ClaimsKey, &models.JwtCustomClaims{UserID: user.ID, Username: user.Username})
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
			}
			return next(c)
		}
	}
}
