package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskmaster/internal/middleware"
	"taskmaster/internal/models"
	"taskmaster/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
	jwtSecret   []byte
	tokenTTL    time.Duration
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, jwtSecret []byte, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

// @Summary      Sign up
// @Description  Registers a new user account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "Signup data"
// @Success      201     {object}  models.User
// @Failure      400     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][signup][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[auth][signup] attempt email=%q", req.Email)

	user, err := h.userService.Signup(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		log.Printf("[auth][signup][err] email=%q: %v", req.Email, err)
		respondError(c, err)
		return
	}
	log.Printf("[auth][signup][ok] id=%d email=%q", user.ID, user.Email)
	c.JSON(http.StatusCreated, user)
}

// @Summary      Log in
// @Description  Authenticates a user and returns a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Login data"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	user, err := h.userService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		log.Printf("[auth][login] user lookup failed email=%q: %v", email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		log.Printf("[auth][login] password mismatch userID=%d", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	username := ""
	if user.Username != nil {
		username = *user.Username
	}

	claims := &middleware.Claims{
		UserID:   user.ID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		log.Printf("[auth][login] sign token failed userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	log.Printf("[auth][login][ok] userID=%d exp_in=%s", user.ID, h.tokenTTL)
	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"token_type":   "bearer",
		"username":     username,
	})
}
