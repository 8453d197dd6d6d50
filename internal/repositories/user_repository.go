package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"taskmaster/internal/apperrors"
	"taskmaster/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1,$2,$3)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q, user.Email, user.Username, user.PasswordHash).Scan(&user.ID)
	return mapUniqueViolation(err, user)
}

// mapUniqueViolation turns a unique-constraint breach into a duplicate error
// naming the conflicting field. Both email and username carry UNIQUE
// constraints (users_email_key, users_username_key).
func mapUniqueViolation(err error, user *models.User) error {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != uniqueViolation {
		return err
	}
	if strings.Contains(pqErr.Constraint, "username") && user.Username != nil {
		return apperrors.Duplicatef("username %q", *user.Username)
	}
	return apperrors.Duplicatef("email %q", user.Email)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT id, email, username, password_hash FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, email, username, password_hash FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var username sql.NullString
	err := row.Scan(&u.ID, &u.Email, &username, &u.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFoundf("user")
		}
		return nil, err
	}
	if username.Valid {
		s := username.String
		u.Username = &s
	}
	return u, nil
}
