package handlers

import (
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/nano-midea/feedview/internal/middleware"
	"github.com/anonto42/nano-midea/feedview/internal/models"
	"github.com/anonto42/nano-midea/feedview/validators"
)

// AccountStore is the part of repositories.UserRepository sign in needs
type AccountStore interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
}

// FeedCreator creates the standard feeds of a new user
type FeedCreator interface {
	CreateFeeds(userID string) ([]models.Subscription, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts  AccountStore
	feeds     FeedCreator
	jwtSecret string
	now       func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts AccountStore, feeds FeedCreator, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		feeds:     feeds,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

// RegisterAuthRoutes registers authentication-related routes. Firebase login
// is only served when firebaseAuth, the Firebase token middleware, is given.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, firebaseAuth echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	if firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin, firebaseAuth)
	}
}

// Signup handles local user registration with a username and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, validators.Problems(err))
	}

	if _, err := h.accounts.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	user := &models.User{
		Username:     req.Username,
		ScreenName:   req.ScreenName,
		PasswordHash: string(hashedPassword),
	}
	if err := h.register(user); err != nil {
		return err
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with a username and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, validators.Problems(err))
	}

	user, err := h.accounts.GetUserByUsername(req.Username)
	if err != nil || user.PasswordHash == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLogin issues a local JWT for the Firebase account verified by
// middleware.FirebaseAuthMiddleware. An account not linked to a local user
// yet is registered under the username in the body.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if userID := middleware.UserIDFromContext(c); userID != "" {
		claims := c.Get(middleware.ClaimsKey).(*models.JwtCustomClaims)
		return h.respondWithToken(c, http.StatusOK, &models.User{ID: claims.UserID, Username: claims.Username})
	}

	firebaseUID, _ := c.Get(middleware.FirebaseUIDKey).(string)
	if firebaseUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Firebase authentication required")
	}
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, validators.Problems(err))
	}
	if _, err := h.accounts.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	}

	screenName := req.Username
	if token, ok := c.Get(middleware.FirebaseTokenKey).(*auth.Token); ok {
		if name, _ := token.Claims["name"].(string); name != "" {
			screenName = name
		}
	}
	user := &models.User{Username: req.Username, ScreenName: screenName, FirebaseUID: firebaseUID}
	if err := h.register(user); err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusCreated, user)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(status, echo.Map{"token": token})
}

// register creates user together with its feeds
func (h *AuthHandler) register(user *models.User) error {
	if err := h.accounts.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}
	if _, err := h.feeds.CreateFeeds(user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user feeds")
	}
	return nil
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := h.now()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(72 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}
