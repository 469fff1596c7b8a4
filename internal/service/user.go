package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"novella-shop/internal/model"
	"novella-shop/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionTokenTTL = 30 * 24 * time.Hour
	resetTokenTTL   = time.Hour

	purposeSession       = "session"
	purposePasswordReset = "password_reset"
)

type UserService interface {
	// Register creates the account, queues the welcome email and returns a
	// signed session token.
	Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ParseSessionToken(token string) (uint, error)

	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error

	// RequestPasswordReset queues a reset email; an unknown address is
	// reported to the caller without revealing anything to the requester.
	RequestPasswordReset(ctx context.Context, email string) (bool, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type userServiceImpl struct {
	userRepo     repository.UserRepository
	emailJobRepo repository.EmailJobRepository
	jwtSecret    []byte
	baseURL      string
}

func NewUserService(
	userRepo repository.UserRepository,
	emailJobRepo repository.EmailJobRepository,
	jwtSecret string,
	baseURL string,
) UserService {
	return &userServiceImpl{
		userRepo:     userRepo,
		emailJobRepo: emailJobRepo,
		jwtSecret:    []byte(jwtSecret),
		baseURL:      baseURL,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, string, error) {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailAlreadyInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	// dispatched through the outbox so a slow mail server never delays
	// the registration response
	job := &model.EmailJob{
		ToAddress: user.Email,
		Subject:   "Welcome to Santa Maria Novella!",
		Body: fmt.Sprintf("Hi %s,\n\n"+
			"Thank you for joining Santa Maria Novella! We're excited to have you with us.\n"+
			"Explore our exclusive fragrances and enjoy a personalized shopping experience.\n\n"+
			"Best regards,\nSanta Maria Novella Team\n", user.FirstName),
	}
	if err := s.emailJobRepo.Enqueue(ctx, job); err != nil {
		return nil, "", fmt.Errorf("queue welcome email: %w", err)
	}

	token, err := s.issueToken(user.ID, purposeSession, sessionTokenTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID, purposeSession, sessionTokenTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *userServiceImpl) ParseSessionToken(token string) (uint, error) {
	return s.parseToken(token, purposeSession)
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, user *model.User) error {
	return s.userRepo.Update(ctx, user)
}

func (s *userServiceImpl) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	token, err := s.issueToken(user.ID, purposePasswordReset, resetTokenTTL)
	if err != nil {
		return false, err
	}

	resetURL := fmt.Sprintf("%s/users/password-reset/confirm?token=%s", s.baseURL, token)
	name := user.FirstName
	if name == "" {
		name = user.Email
	}

	job := &model.EmailJob{
		ToAddress: user.Email,
		Subject:   "Password Reset Request",
		Body: fmt.Sprintf("Hi %s,\n\n"+
			"Please click the link below to reset your password:\n%s\n\n"+
			"If you did not request this, please ignore this email.\n\n"+
			"Best regards,\nSanta Maria Novella Team\n", name, resetURL),
	}
	if err := s.emailJobRepo.Enqueue(ctx, job); err != nil {
		return false, fmt.Errorf("queue reset email: %w", err)
	}

	return true, nil
}

func (s *userServiceImpl) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userID, err := s.parseToken(token, purposePasswordReset)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (s *userServiceImpl) issueToken(userID uint, purpose string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"aud": purpose,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *userServiceImpl) parseToken(tokenString, purpose string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithAudience(purpose), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("token subject: %w", err)
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed token subject")
	}

	return uint(userID), nil
}
