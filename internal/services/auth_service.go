package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uptask/uptask-server/internal/models"
	"github.com/uptask/uptask-server/internal/store"
)

type authServiceImpl struct {
	logger        zerolog.Logger
	store         store.Store
	mailer        Mailer
	jwtIssuer     string
	jwtSigningKey []byte
	jwtTokenTTL   time.Duration
}

func NewAuthService(
	logger zerolog.Logger,
	st store.Store,
	mailer Mailer,
	jwtIssuer string,
	jwtSigningKey []byte,
	jwtTokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:        logger,
		store:         st,
		mailer:        mailer,
		jwtIssuer:     jwtIssuer,
		jwtSigningKey: jwtSigningKey,
		jwtTokenTTL:   jwtTokenTTL,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.Password = passwordHash

	token, err := generateOpaqueToken()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate confirmation token")
		return nil, err
	}
	user.Token = token

	err = s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	go func() {
		err := s.mailer.SendAccountConfirmation(user)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("email", user.Email).
				Msg("failed to send confirmation email")
		}
	}()

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return user, nil
}

func (s *authServiceImpl) Confirm(ctx context.Context, token string) error {
	user, err := s.store.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Msg("confirmation token not found")
			return ErrTokenNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by token")
		return err
	}

	user.Confirmed = true
	user.Token = ""
	user.UpdatedAt = time.Now()

	err = s.store.UpdateUser(ctx, user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user")
		return err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("confirmed account")
	return nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := s.store.FindUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().
				Str("email", params.Email).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("email", params.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	if !user.Confirmed {
		s.logger.Error().
			Str("user_id", user.ID).
			Msg("account not confirmed")
		return nil, ErrUserNotConfirmed
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().Msg("passwords do not match")
		return nil, ErrUserPasswordMismatch
	}

	token, expiresAt, err := s.generateAccessToken(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return &LoginResult{
		User:           user,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}, nil
}

func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().
				Str("email", email).
				Msg("user not found")
			return ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to select user by email")
		return err
	}

	token, err := generateOpaqueToken()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate reset token")
		return err
	}
	user.Token = token
	user.UpdatedAt = time.Now()

	err = s.store.UpdateUser(ctx, user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user")
		return err
	}

	go func() {
		err := s.mailer.SendPasswordReset(user)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("email", user.Email).
				Msg("failed to send password reset email")
		}
	}()

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("stored password reset token")
	return nil
}

func (s *authServiceImpl) CheckResetToken(ctx context.Context, token string) error {
	_, err := s.store.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Msg("reset token not found")
			return ErrTokenNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by token")
		return err
	}
	return nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.store.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Msg("reset token not found")
			return ErrTokenNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by token")
		return err
	}

	passwordHash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return err
	}

	user.Password = passwordHash
	user.Token = ""
	user.UpdatedAt = time.Now()

	err = s.store.UpdateUser(ctx, user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user")
		return err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("reset password")
	return nil
}

func (s *authServiceImpl) UserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to select user by id")
		return nil, err
	}
	return user, nil
}

func (s *authServiceImpl) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.jwtSigningKey, nil
		},
		jwt.WithIssuer(s.jwtIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token is expired: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, errors.New("failed to parse token claims")
	}
	return claims, nil
}

func (s *authServiceImpl) generateAccessToken(userID string) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    s.jwtIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(s.jwtSigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func generateOpaqueToken() (string, error) {
	const length = 32
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
