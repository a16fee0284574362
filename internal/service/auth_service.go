package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"sharefolio/internal/config"
	"sharefolio/internal/models"
	"sharefolio/internal/realtime"
	"sharefolio/internal/repository"
	"sharefolio/internal/validation"
)

// AuthResult is a signed-in user together with a fresh token pair.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	SignUp(ctx context.Context, form validation.SignUpForm) (*AuthResult, error)
	Login(ctx context.Context, form validation.LoginForm) (*AuthResult, error)
	GuestLogin(ctx context.Context) (*AuthResult, error)
	FederatedSignIn(ctx context.Context, idToken string) (*AuthResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	UserIDFromToken(tokenString string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	verifier IdentityVerifier
	events   Publisher
	cfg      *config.Config
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, verifier IdentityVerifier, events Publisher, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		verifier: verifier,
		events:   events,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *authService) SignUp(ctx context.Context, form validation.SignUpForm) (*AuthResult, error) {
	if err := validationError(validation.Validate(form)); err != nil {
		return nil, err
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
	}

	err := s.userRepo.CreateUser(ctx, user, form.Password)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	s.events.Publish(realtime.TopicUsers, realtime.KindCreated, user.UserID)

	return s.issueTokens(ctx, user)
}

func (s *authService) Login(ctx context.Context, form validation.LoginForm) (*AuthResult, error) {
	if err := validationError(validation.Validate(form)); err != nil {
		return nil, err
	}

	user, err := s.userRepo.VerifyPassword(ctx, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка аутентификации: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// GuestLogin signs in with the demo account from the configuration.
func (s *authService) GuestLogin(ctx context.Context) (*AuthResult, error) {
	return s.Login(ctx, validation.LoginForm{
		Email:    s.cfg.Guest.Email,
		Password: s.cfg.Guest.Password,
	})
}

// FederatedSignIn creates the user record on the first sign-in of an
// identity. Later sign-ins keep the stored profile, including edits made
// through the profile page.
func (s *authService) FederatedSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.UpsertFederatedUser(ctx, &models.User{
		UserID:   identity.Subject,
		Username: identity.Name,
		Email:    identity.Email,
		PhotoURL: identity.Picture,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении пользователя: %w", err)
	}

	user, err := s.userRepo.GetUserByID(ctx, identity.Subject)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	if created {
		s.logger.Info("federated user created", zap.String("user_id", user.UserID))
		s.events.Publish(realtime.TopicUsers, realtime.KindCreated, user.UserID)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("ошибка проверки refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации access token: %w", err)
	}

	refreshToken := uuid.New().String()
	expiry := time.Now().Add(s.cfg.RefreshTokenDuration)

	err = s.userRepo.UpdateRefreshToken(ctx, user.UserID, refreshToken, expiry)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения refresh token: %w", err)
	}

	user.RefreshToken = refreshToken
	user.RefreshTokenExpiryTime = expiry

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.UserID,
		"email":  user.Email,
		"exp":    now.Add(s.cfg.AccessTokenDuration).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return tokenString, nil
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}

func (s *authService) UserIDFromToken(tokenString string) (string, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}
