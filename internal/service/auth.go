package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fisiocal/config"
	"fisiocal/internal/domain"
	"fisiocal/internal/repository"
	"fisiocal/pkg/auth"
	"fisiocal/pkg/validator"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64           `json:"user_id"`
	Role      domain.UserRole `json:"role"`
	ProfileID int64           `json:"profile_id,omitempty"`
}

type AuthServiceImpl struct {
	authRepo      repository.AuthRepository
	userRepo      repository.UserRepository
	patientRepo   repository.PatientRepository
	therapistRepo repository.TherapistRepository
	jwtConfig     config.JWTConfig
	logger        *zap.Logger
}

func NewAuthService(
	authRepo repository.AuthRepository,
	userRepo repository.UserRepository,
	patientRepo repository.PatientRepository,
	therapistRepo repository.TherapistRepository,
	jwtConfig config.JWTConfig,
	logger *zap.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		authRepo:      authRepo,
		userRepo:      userRepo,
		patientRepo:   patientRepo,
		therapistRepo: therapistRepo,
		jwtConfig:     jwtConfig,
		logger:        logger,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, dto domain.RegisterRequest) (int64, error) {
	if !validator.ValidateEmail(dto.Email) {
		return 0, errors.New("invalid email address")
	}

	if !validator.ValidatePhone(dto.Phone) {
		return 0, errors.New("invalid phone number")
	}

	if !validator.ValidatePassword(dto.Password) {
		return 0, errors.New("password must be at least 6 characters")
	}

	if !validator.ValidateNamePart(dto.FirstName) || !validator.ValidateNamePart(dto.LastName) {
		return 0, errors.New("invalid name")
	}

	dto.Phone = validator.FormatPhone(dto.Phone)
	dto.FirstName = validator.FormatName(dto.FirstName)
	dto.LastName = validator.FormatName(dto.LastName)

	existingUser, err := s.userRepo.GetByEmail(ctx, dto.Email)
	if err == nil && existingUser != nil {
		return 0, errors.New("a user with this email already exists")
	}

	existingUser, err = s.userRepo.GetByPhone(ctx, dto.Phone)
	if err == nil && existingUser != nil {
		return 0, errors.New("a user with this phone already exists")
	}

	hashedPassword, err := auth.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return 0, errors.New("failed to register user")
	}

	createUserDTO := domain.CreateUserDTO{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Phone:     dto.Phone,
		Password:  hashedPassword,
		Role:      dto.Role,
	}

	userID, err := s.userRepo.Create(ctx, createUserDTO)
	if err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		return 0, errors.New("failed to register user")
	}

	if err := s.createProfile(ctx, userID, dto.Role); err != nil {
		s.logger.Error("failed to create profile", zap.Int64("userId", userID), zap.Error(err))
		return 0, errors.New("failed to register user")
	}

	return userID, nil
}

func (s *AuthServiceImpl) createProfile(ctx context.Context, userID int64, role domain.UserRole) error {
	switch role {
	case domain.UserRolePatient:
		_, err := s.patientRepo.Create(ctx, domain.CreatePatientDTO{UserID: userID})
		return err
	case domain.UserRoleTherapist:
		_, err := s.therapistRepo.Create(ctx, domain.CreateTherapistDTO{UserID: userID, Kind: domain.TherapistKindFisioterapeuta})
		return err
	case domain.UserRoleEducadorFisico:
		_, err := s.therapistRepo.Create(ctx, domain.CreateTherapistDTO{UserID: userID, Kind: domain.TherapistKindEducadorFisico})
		return err
	case domain.UserRoleAdmin:
		return nil
	default:
		return fmt.Errorf("unknown role: %s", role)
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error) {
	user, err := s.userRepo.GetByEmail(ctx, dto.Login)
	if err != nil {
		// Phones are stored normalized, so normalize the login too.
		user, err = s.userRepo.GetByPhone(ctx, validator.FormatPhone(dto.Login))
		if err != nil {
			s.logger.Warn("user not found", zap.String("login", dto.Login), zap.Error(err))
			return nil, errors.New("invalid login or password")
		}
	}

	ok, err := auth.VerifyPassword(dto.Password, user.PasswordHash)
	if err != nil || !ok {
		s.logger.Warn("password mismatch", zap.Int64("userId", user.ID))
		return nil, errors.New("invalid login or password")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	return s.issueSession(ctx, user, userAgent, ip)
}

func (s *AuthServiceImpl) RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error) {
	session, err := s.authRepo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("session lookup failed", zap.Error(err))
		return nil, errors.New("invalid refresh token")
	}

	if session.ExpiresAt.Before(time.Now()) {
		s.authRepo.DeleteSession(ctx, session.ID)
		return nil, errors.New("refresh token has expired")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		s.logger.Error("user not found for session", zap.Int64("userId", session.UserID), zap.Error(err))
		return nil, errors.New("user not found")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	if err := s.authRepo.DeleteSession(ctx, session.ID); err != nil {
		s.logger.Warn("failed to delete old session", zap.Error(err))
	}

	return s.issueSession(ctx, user, userAgent, ip)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.authRepo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("session not found on logout", zap.Error(err))
		return nil
	}

	if err := s.authRepo.DeleteSession(ctx, session.ID); err != nil {
		s.logger.Error("failed to delete session", zap.Error(err))
		return errors.New("failed to log out")
	}

	return nil
}

func (s *AuthServiceImpl) ParseToken(ctx context.Context, tokenString string) (*domain.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.SigningKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	actor := domain.Actor{
		UserID: claims.UserID,
		Role:   claims.Role,
	}

	if claims.ProfileID != 0 {
		profileID := claims.ProfileID
		switch claims.Role {
		case domain.UserRolePatient:
			actor.PatientID = &profileID
		case domain.UserRoleTherapist, domain.UserRoleEducadorFisico:
			actor.TherapistID = &profileID
		}
	}

	return &actor, nil
}

func (s *AuthServiceImpl) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.authRepo.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("failed to purge expired sessions", zap.Error(err))
		return 0, err
	}
	return removed, nil
}

func (s *AuthServiceImpl) issueSession(ctx context.Context, user *domain.User, userAgent, ip string) (*domain.Tokens, error) {
	profileID, err := s.profileID(ctx, user)
	if err != nil {
		s.logger.Error("failed to resolve profile", zap.Int64("userId", user.ID), zap.Error(err))
		return nil, errors.New("failed to authenticate")
	}

	tokens, err := s.generateTokens(user.ID, user.Role, profileID)
	if err != nil {
		s.logger.Error("failed to generate tokens", zap.Error(err))
		return nil, errors.New("failed to authenticate")
	}

	session := domain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: tokens.RefreshToken,
		UserAgent:    userAgent,
		IP:           ip,
		ExpiresAt:    time.Now().Add(s.jwtConfig.RefreshTokenTTL),
		CreatedAt:    time.Now(),
	}

	if err := s.authRepo.CreateSession(ctx, session); err != nil {
		s.logger.Error("failed to save session", zap.Error(err))
		return nil, errors.New("failed to authenticate")
	}

	return tokens, nil
}

func (s *AuthServiceImpl) profileID(ctx context.Context, user *domain.User) (int64, error) {
	switch user.Role {
	case domain.UserRolePatient:
		patient, err := s.patientRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return 0, err
		}
		return patient.ID, nil
	case domain.UserRoleTherapist, domain.UserRoleEducadorFisico:
		therapist, err := s.therapistRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return 0, err
		}
		return therapist.ID, nil
	default:
		return 0, nil
	}
}

func (s *AuthServiceImpl) generateTokens(userID int64, role domain.UserRole, profileID int64) (*domain.Tokens, error) {
	accessTokenClaims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtConfig.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:    userID,
		Role:      role,
		ProfileID: profileID,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtConfig.SigningKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshTokenClaims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtConfig.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			// Sessions are keyed by refresh token, so each one must be
			// unique even when issued within the same second.
			ID: uuid.New().String(),
		},
		UserID:    userID,
		Role:      role,
		ProfileID: profileID,
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshTokenClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.jwtConfig.SigningKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &domain.Tokens{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
	}, nil
}
