package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro-service/internal/models"
	"bistro-service/internal/store"
	"bistro-service/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminClaims are carried by admin session tokens
type AdminClaims struct {
	jwt.RegisteredClaims
}

// AuthOptions configures AuthService
type AuthOptions struct {
	Secret   []byte
	TokenTTL time.Duration
	// Fallback holds username/password pairs accepted in addition to the
	// stored admins.
	Fallback map[string]string
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

// AuthService verifies admin credentials and issues session tokens
type AuthService struct {
	repo      store.AdminRepository
	secret    []byte
	ttl       time.Duration
	cost      int
	fallback  map[string][]byte
	dummyHash []byte
	now       func() time.Time
	logger    *zap.Logger
}

// NewAuthService creates a new auth service. Fallback passwords are hashed
// here so they are never compared in plain text.
func NewAuthService(repo store.AdminRepository, opts AuthOptions) (*AuthService, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	s := &AuthService{
		repo:     repo,
		secret:   opts.Secret,
		ttl:      ttl,
		cost:     cost,
		fallback: make(map[string][]byte, len(opts.Fallback)),
		now:      time.Now,
		logger:   util.GetLogger(),
	}

	for user, pass := range opts.Fallback {
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash fallback credential: %w", err)
		}
		s.fallback[user] = hash
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("bistro-timing-guard"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash timing guard: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

// Verify reports whether username and password match a stored admin or a
// fallback pair
func (s *AuthService) Verify(ctx context.Context, username, password string) (bool, error) {
	cred, err := s.repo.FindAdmin(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	if cred != nil && bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) == nil {
		return true, nil
	}

	hash, ok := s.fallback[username]
	if ok && bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil {
		return true, nil
	}

	if cred == nil && !ok {
		// unknown usernames cost the same as wrong passwords
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
	}
	return false, nil
}

// Register stores a new admin
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required: %w", models.ErrInvalidAdmin)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.CreateAdmin(ctx, models.AdminCredential{
		Username:     username,
		PasswordHash: string(hash),
	}); err != nil {
		return err
	}

	s.logger.Info("Admin registered", zap.String("username", username))
	return nil
}

// Login verifies the credentials and returns a signed token with its expiry
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	ok, err := s.Verify(ctx, username, password)
	if err != nil {
		util.AdminLoginsTotal.WithLabelValues("error").Inc()
		return "", time.Time{}, err
	}
	if !ok {
		util.AdminLoginsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Admin login rejected", zap.String("username", username))
		return "", time.Time{}, models.ErrInvalidCredential
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		util.AdminLoginsTotal.WithLabelValues("error").Inc()
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	util.AdminLoginsTotal.WithLabelValues("accepted").Inc()
	return token, expiresAt, nil
}

// ParseToken validates a session token and returns the admin username
func (s *AuthService) ParseToken(token string) (string, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", models.ErrInvalidCredential
	}
	if claims.Subject == "" {
		return "", models.ErrInvalidCredential
	}
	return claims.Subject, nil
}
