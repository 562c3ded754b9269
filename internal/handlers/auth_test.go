package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/feedview/internal/middleware"
	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/validators"
)

type fakeAccounts map[string]*models.User

func (f fakeAccounts) CreateUser(user *models.User) error {
	if user.ID == "" {
		user.ID = "u-" + user.Username
	}
	f[user.Username] = user
	return nil
}

func (f fakeAccounts) GetUserByUsername(username string) (*models.User, error) {
	u, ok := f[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeFeeds struct {
	created []string
}

func (f *fakeFeeds) CreateFeeds(userID string) ([]models.Subscription, error) {
	f.created = append(f.created, userID)
	return nil, nil
}

// fakeFirebase accepts "Bearer <uid>" and links the uid the way
// middleware.FirebaseAuthMiddleware does
func fakeFirebase(accounts fakeAccounts) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if uid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}
			c.Set(middleware.FirebaseUIDKey, uid)
			c.Set(middleware.FirebaseTokenKey, &auth.Token{UID: uid, Claims: map[string]interface{}{"name": "Fire Fox"}})
			for _, u := range accounts {
				if u.FirebaseUID == uid {
					c.Set(middleware.ClaimsKey, &models.JwtCustomClaims{UserID: u.ID, Username: u.Username})
				}
			}
			return next(c)
		}
	}
}

type authServer struct {
	e        *echo.Echo
	accounts fakeAccounts
	feeds    *fakeFeeds
}

func newAuthServer(t *testing.T, withFirebase bool) *authServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	s := &authServer{
		e: echo.New(),
		accounts: fakeAccounts{
			"alice": {ID: "u-alice", Username: "alice", PasswordHash: string(hash), FirebaseUID: "fb-alice"},
			"bob":   {ID: "u-bob", Username: "bob", FirebaseUID: "fb-bob"},
		},
		feeds: &fakeFeeds{},
	}
	s.e.Validator = validators.NewValidator(0)

	var firebaseAuth echo.MiddlewareFunc
	if withFirebase {
		firebaseAuth = fakeFirebase(s.accounts)
	}
	NewAuthHandler(s.accounts, s.feeds, testSecret).RegisterAuthRoutes(s.e.Group("/api/v1/auth"), firebaseAuth)
	return s
}

func (s *authServer) post(t *testing.T, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth"+path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// issued returns the claims of the token in a successful auth response
func issued(t *testing.T, rec *httptest.ResponseRecorder) *models.JwtCustomClaims {
	t.Helper()
	var body struct {
		Token string `json:"token"`
	}
	decode(t, rec, &body)
	claims := &models.JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(body.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	return claims
}

func TestSignup(t *testing.T) {
	s := newAuthServer(t, false)

	rec := s.post(t, "/signup", `{"username":"newbie","screenName":"New Bie","password":"longenough"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if claims := issued(t, rec); claims.UserID != "u-newbie" || claims.Username != "newbie" {
		t.Errorf("claims = %+v", claims)
	}
	stored := s.accounts["newbie"]
	if stored == nil || bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")) != nil {
		t.Errorf("stored user = %+v", stored)
	}
	if len(s.feeds.created) != 1 || s.feeds.created[0] != "u-newbie" {
		t.Errorf("feeds created for %v", s.feeds.created)
	}

	tests := []struct {
		name string
		body string
		code int
	}{
		{"taken username", `{"username":"alice","screenName":"Alice","password":"longenough"}`, http.StatusConflict},
		{"short password", `{"username":"carol","screenName":"Carol","password":"short"}`, http.StatusUnprocessableEntity},
		{"bad username", `{"username":"no spaces","screenName":"Carol","password":"longenough"}`, http.StatusUnprocessableEntity},
		{"malformed", `{"username":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := s.post(t, "/signup", tt.body, ""); rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	s := newAuthServer(t, false)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"valid", `{"username":"alice","password":"correct-horse"}`, http.StatusOK},
		{"wrong password", `{"username":"alice","password":"battery-staple"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"zed","password":"correct-horse"}`, http.StatusUnauthorized},
		{"firebase only account", `{"username":"bob","password":"anything"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"alice"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.post(t, "/signin", tt.body, "")
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
			if tt.code == http.StatusOK {
				if claims := issued(t, rec); claims.UserID != "u-alice" {
					t.Errorf("claims = %+v", claims)
				}
			}
		})
	}
}

func TestFirebaseLogin(t *testing.T) {
	t.Run("linked account", func(t *testing.T) {
		s := newAuthServer(t, true)
		rec := s.post(t, "/firebase-login", `{}`, "fb-alice")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if claims := issued(t, rec); claims.UserID != "u-alice" {
			t.Errorf("claims = %+v", claims)
		}
		if len(s.feeds.created) != 0 {
			t.Errorf("feeds created for %v", s.feeds.created)
		}
	})

	t.Run("new account", func(t *testing.T) {
		s := newAuthServer(t, true)
		rec := s.post(t, "/firebase-login", `{"username":"foxy"}`, "fb-new")
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if claims := issued(t, rec); claims.UserID != "u-foxy" {
			t.Errorf("claims = %+v", claims)
		}
		u := s.accounts["foxy"]
		if u == nil || u.FirebaseUID != "fb-new" || u.ScreenName != "Fire Fox" || u.PasswordHash != "" {
			t.Errorf("registered user = %+v", u)
		}
	})

	t.Run("username taken", func(t *testing.T) {
		s := newAuthServer(t, true)
		if rec := s.post(t, "/firebase-login", `{"username":"alice"}`, "fb-new"); rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("missing username", func(t *testing.T) {
		s := newAuthServer(t, true)
		if rec := s.post(t, "/firebase-login", `{}`, "fb-new"); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("firebase disabled", func(t *testing.T) {
		s := newAuthServer(t, false)
		if rec := s.post(t, "/firebase-login", `{"username":"foxy"}`, "fb-new"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestGenerateJWTExpiry(t *testing.T) {
	h := NewAuthHandler(fakeAccounts{}, &fakeFeeds{}, testSecret)
	h.now = func() time.Time { return t0 }

	signed, err := h.generateJWT(&models.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("generateJWT: %v", err)
	}
	claims := &models.JwtCustomClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 72*time.Hour {
		t.Errorf("lifetime = %v, want 72h", got)
	}
	if !errors.Is(claims.Valid(), jwt.ErrTokenExpired) {
		t.Errorf("a token issued at %v should have expired by now", t0)
	}
}
