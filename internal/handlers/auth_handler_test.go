package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskmaster/internal/apperrors"
	"taskmaster/internal/middleware"
	"taskmaster/internal/models"
	"taskmaster/internal/services"
)

type stubUserService struct {
	users map[string]*models.User
}

func (s *stubUserService) Signup(_ context.Context, email string, username *string, _ string) (*models.User, error) {
	if _, ok := s.users[email]; ok {
		return nil, apperrors.Duplicatef("email %q", email)
	}
	u := &models.User{ID: int64(len(s.users) + 1), Email: email, Username: username}
	s.users[email] = u
	return u, nil
}

func (s *stubUserService) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, apperrors.NotFoundf("user")
	}
	return u, nil
}

func (s *stubUserService) GetByID(_ context.Context, _ int64) (*models.User, error) {
	return nil, apperrors.NotFoundf("user")
}

var authTestSecret = []byte("handler-test-secret")

func newAuthRouter(users *stubUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(users, services.NewAuthService(), authTestSecret, time.Hour)
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	return r
}

func TestSignupHandlerDuplicate(t *testing.T) {
	r := newAuthRouter(&stubUserService{users: map[string]*models.User{}})

	w := doJSON(r, "POST", "/signup", `{"email":"a@example.com","password":"pass"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d, body = %s", w.Code, w.Body.String())
	}
	w = doJSON(r, "POST", "/signup", `{"email":"a@example.com","password":"pass"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", w.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	auth := services.NewAuthService()
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	username := "alice"
	users := &stubUserService{users: map[string]*models.User{
		"alice@example.com": {ID: 7, Email: "alice@example.com", Username: &username, PasswordHash: hash},
	}}
	r := newAuthRouter(users)

	t.Run("success returns bearer token", func(t *testing.T) {
		w := doJSON(r, "POST", "/login", `{"email":"alice@example.com","password":"correct-horse"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}

		var resp struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			Username    string `json:"username"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if resp.TokenType != "bearer" {
			t.Errorf("token_type = %q", resp.TokenType)
		}
		if resp.Username != "alice" {
			t.Errorf("username = %q", resp.Username)
		}

		claims := &middleware.Claims{}
		_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return authTestSecret, nil
		})
		if err != nil {
			t.Fatalf("token does not parse: %v", err)
		}
		if claims.UserID != 7 {
			t.Errorf("claims.UserID = %d, want 7", claims.UserID)
		}
		if claims.Subject != "alice@example.com" {
			t.Errorf("claims.Subject = %q", claims.Subject)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(r, "POST", "/login", `{"email":"alice@example.com","password":"wrong"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		w := doJSON(r, "POST", "/login", `{"email":"ghost@example.com","password":"whatever"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}
