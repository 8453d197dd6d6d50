package services

import (
	"golang.org/x/crypto/bcrypt"

	"taskmaster/internal/apperrors"
)

// AuthService owns credential hashing. Token minting lives with the auth
// handler; the hash format stays an implementation detail of this service.
type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) error
}

type authService struct{}

func NewAuthService() AuthService {
	return &authService{}
}

func (s *authService) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *authService) CheckPassword(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return apperrors.ErrAuth
	}
	return nil
}
