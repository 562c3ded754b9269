package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/models"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, claims *models.JwtCustomClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func validClaims(userID string) *models.JwtCustomClaims {
	return &models.JwtCustomClaims{
		UserID:   userID,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// run passes a request with the given Authorization header through mw and
// reports the status and the user id seen by the handler
func run(t *testing.T, mw echo.MiddlewareFunc, header string) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	err := mw(func(c echo.Context) error {
		seen = UserIDFromContext(c)
		return c.NoContent(http.StatusNoContent)
	})(c)
	if err != nil {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			t.Fatalf("unexpected error: %v", err)
		}
		return he.Code, seen
	}
	return rec.Code, seen
}

func TestJWTAuthMiddleware(t *testing.T) {
	good := sign(t, testSecret, validClaims("u1"))
	expired := validClaims("u1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name     string
		optional bool
		header   string
		status   int
		userID   string
	}{
		{"valid token", false, "Bearer " + good, http.StatusNoContent, "u1"},
		{"lowercase scheme", false, "bearer " + good, http.StatusNoContent, "u1"},
		{"missing header", false, "", http.StatusUnauthorized, ""},
		{"missing header optional", true, "", http.StatusNoContent, ""},
		{"bad format", true, "Token " + good, http.StatusUnauthorized, ""},
		{"wrong secret", false, "Bearer " + sign(t, "other", validClaims("u1")), http.StatusUnauthorized, ""},
		{"expired", true, "Bearer " + sign(t, testSecret, expired), http.StatusUnauthorized, ""},
		{"no user id", false, "Bearer " + sign(t, testSecret, validClaims("")), http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, userID := run(t, JWTAuthMiddleware(testSecret, tt.optional), tt.header)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if userID != tt.userID {
				t.Errorf("user id = %q, want %q", userID, tt.userID)
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	chain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return JWTAuthMiddleware(testSecret, true)(RequireUser(next))
	}
	if status, _ := run(t, chain, ""); status != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", status)
	}
	if status, id := run(t, chain, "Bearer "+sign(t, testSecret, validClaims("u1"))); status != http.StatusNoContent || id != "u1" {
		t.Errorf("signed-in status = %d id = %q", status, id)
	}
}

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := f[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return &auth.Token{UID: uid}, nil
}

type fakeLookup map[string]models.User

func (f fakeLookup) GetUserByFirebaseUID(uid string) (*models.User, error) {
	if uid == "fb-broken" {
		return nil, errors.New("connection refused")
	}
	u, ok := f[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := fakeVerifier{"linked": "fb-1", "unlinked": "fb-2", "broken": "fb-broken"}
	users := fakeLookup{"fb-1": {ID: "u1", Username: "alice"}}

	tests := []struct {
		name   string
		header string
		status int
		userID string
		uid    string
	}{
		{"linked account", "Bearer linked", http.StatusNoContent, "u1", "fb-1"},
		{"unlinked account", "Bearer unlinked", http.StatusNoContent, "", "fb-2"},
		{"lookup failure", "Bearer broken", http.StatusInternalServerError, "", ""},
		{"rejected token", "Bearer forged", http.StatusUnauthorized, "", ""},
		{"missing header", "", http.StatusUnauthorized, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var uid string
			mw := func(next echo.HandlerFunc) echo.HandlerFunc {
				return FirebaseAuthMiddleware(verifier, users)(func(c echo.Context) error {
					uid, _ = c.Get(FirebaseUIDKey).(string)
					return next(c)
				})
			}
			status, userID := run(t, mw, tt.header)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if userID != tt.userID {
				t.Errorf("user id = %q, want %q", userID, tt.userID)
			}
			if uid != tt.uid {
				t.Errorf("firebase uid = %q, want %q", uid, tt.uid)
			}
		})
	}
}
