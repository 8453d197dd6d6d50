package services

import (
	"context"
	"log"
	"net/mail"
	"strings"

	"taskmaster/internal/apperrors"
	"taskmaster/internal/models"
	"taskmaster/internal/repositories"
)

type UserService interface {
	Signup(ctx context.Context, email string, username *string, password string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	authService  AuthService
	emailService EmailService
}

func NewUserService(repo repositories.UserRepository, authService AuthService, emailService EmailService) UserService {
	return &userService{
		repo:         repo,
		authService:  authService,
		emailService: emailService,
	}
}

// Signup registers a new user. The raw password is hashed before anything is
// stored; a second signup with the same email fails with a duplicate error.
func (s *userService) Signup(ctx context.Context, email string, username *string, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.Validationf("invalid email %q", email)
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperrors.Validationf("password is required")
	}
	if username != nil {
		u := strings.TrimSpace(*username)
		if u == "" {
			username = nil
		} else {
			username = &u
		}
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		// warn but do not fail the signup
		if err := s.emailService.SendWelcomeEmail(user.Email, displayName(user)); err != nil {
			log.Printf("[user][signup] warning: welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func displayName(u *models.User) string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}
