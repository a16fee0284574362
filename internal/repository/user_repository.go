package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"sharefolio/internal/models"
)

var ErrInvalidPassword = errors.New("неверный пароль")

const userColumns = `user_id, username, email, photo_url, provider, password_hash,
		refresh_token, refresh_token_expiry_time, created_at`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = string(hashedPassword)
	user.Provider = models.ProviderPassword
	user.CreatedAt = time.Now()

	query := `
		INSERT INTO users (user_id, username, email, photo_url, provider, password_hash, refresh_token, refresh_token_expiry_time, created_at)
		VALUES (:user_id, :username, :email, :photo_url, :provider, :password_hash, :refresh_token, :refresh_token_expiry_time, :created_at)
	`

	_, err = r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("пользователь с email %s: %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

// UpsertFederatedUser creates the record for a federated identity on its
// first sign-in. Later sign-ins leave the stored profile untouched, so the
// call is idempotent per subject id. It reports whether a row was inserted.
func (r *userRepository) UpsertFederatedUser(ctx context.Context, user *models.User) (bool, error) {
	user.Provider = models.ProviderFederated
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (user_id, username, email, photo_url, provider, created_at)
		VALUES (:user_id, :username, :email, :photo_url, :provider, :created_at)
		ON CONFLICT (user_id) DO NOTHING
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return false, fmt.Errorf("ошибка при сохранении пользователя: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке вставленных строк: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с ID %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND provider = 'password'`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}

	return users, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID, username, photoURL string) error {
	query := `
		UPDATE users
		SET username = $1, photo_url = $2
		WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, username, photoURL, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении профиля: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пользователь с ID %s: %w", userID, ErrNotFound)
	}

	return nil
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry_time = $2
		WHERE user_id = $3
	`

	_, err := r.db.ExecContext(ctx, query, refreshToken, expiryTime, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	var user models.User

	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE refresh_token = $1
		AND refresh_token_expiry_time > CURRENT_TIMESTAMP
	`

	err := r.db.GetContext(ctx, &user, query, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("недействительный или просроченный refresh token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по refresh token: %w", err)
	}

	return &user, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
