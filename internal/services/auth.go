package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/notebook-buddy/backend/internal/data/repos/user"
	types "github.com/notebook-buddy/backend/internal/domain"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/ctxutil"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type CreateUserParams struct {
	Email      string
	Password   string
	Name       string
	Provider   string
	ProviderID string
	IsDemo     bool
}

type DemoCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*types.User, error)
	// Authenticate returns (nil, nil) when the credentials do not match;
	// callers cannot distinguish an unknown email from a wrong password.
	Authenticate(ctx context.Context, email, password string) (*types.User, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	CreateDemoUser(ctx context.Context) (*types.User, DemoCredentials, string, error)
	SetDemoFlag(ctx context.Context, email string, isDemo bool) error
	GetDemoFlag(ctx context.Context, email string) (bool, error)
	// SetContextFromToken validates the token and attaches request data.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type AuthConfig struct {
	JWTSecret string
	AccessTTL time.Duration
}

type authService struct {
	log      *logger.Logger
	userRepo user.UserRepo
	cfg      AuthConfig
}

func NewAuthService(log *logger.Logger, userRepo user.UserRepo, cfg AuthConfig) (AuthService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repo required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	return &authService{
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		cfg:      cfg,
	}, nil
}

func (s *authService) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apierr.Validation("email required")
	}
	u, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, apierr.Storage("lookup user %s failed", email)
	}
	return u, nil
}

func (s *authService) CreateUser(ctx context.Context, params CreateUserParams) (*types.User, error) {
	email := normalizeEmail(params.Email)
	if email == "" {
		return nil, apierr.Validation("email required")
	}
	hasPassword := strings.TrimSpace(params.Password) != ""
	hasProvider := strings.TrimSpace(params.Provider) != ""
	if !hasPassword && !hasProvider {
		return nil, apierr.Validation("either password or provider is required")
	}

	exists, err := s.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, apierr.Storage("lookup user %s failed", email)
	}
	if exists {
		return nil, apierr.Conflict("user with email %s already exists", email)
	}

	u := &types.User{
		ID:         uuid.New(),
		Email:      email,
		Name:       strings.TrimSpace(params.Name),
		Provider:   strings.TrimSpace(params.Provider),
		ProviderID: strings.TrimSpace(params.ProviderID),
		IsActive:   true,
		IsDemo:     params.IsDemo,
	}
	if hasPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apierr.Storage("failed to hash password")
		}
		u.PasswordHash = string(hash)
	}

	created, err := s.userRepo.Create(ctx, nil, []*types.User{u})
	if err != nil {
		return nil, apierr.Storage("create user %s failed", email)
	}
	s.log.Info("User created", "user_id", created[0].ID.String(), "is_demo", u.IsDemo)
	return created[0], nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*types.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}

	u, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, apierr.Storage("lookup user %s failed", email)
	}
	if u == nil || u.PasswordHash == "" {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", apierr.Auth("invalid email or password")
	}
	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", apierr.Storage("failed to issue access token")
	}
	return u, token, nil
}

// CreateDemoUser provisions a throwaway account with generated credentials.
// The plaintext password is returned exactly once.
func (s *authService) CreateDemoUser(ctx context.Context) (*types.User, DemoCredentials, string, error) {
	creds := DemoCredentials{
		Email:    fmt.Sprintf("demo_%s@demo.com", uuid.New().String()[:8]),
		Password: uuid.New().String(),
	}

	u, err := s.CreateUser(ctx, CreateUserParams{
		Email:    creds.Email,
		Password: creds.Password,
		Name:     "Demo User",
		IsDemo:   true,
	})
	if err != nil {
		return nil, DemoCredentials{}, "", err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, DemoCredentials{}, "", apierr.Storage("failed to issue access token")
	}
	return u, creds, token, nil
}

func (s *authService) SetDemoFlag(ctx context.Context, email string, isDemo bool) error {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return apierr.NotFound("user %s not found", normalizeEmail(email))
	}
	if err := s.userRepo.UpdateDemoFlag(ctx, nil, u.ID, isDemo); err != nil {
		return apierr.Storage("update demo flag failed")
	}
	return nil
}

func (s *authService) GetDemoFlag(ctx context.Context, email string) (bool, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, apierr.NotFound("user %s not found", normalizeEmail(email))
	}
	return u.IsDemo, nil
}

// -------------------- tokens --------------------

type accessClaims struct {
	Email  string `json:"email"`
	IsDemo bool   `json:"is_demo"`
	jwt.RegisteredClaims
}

func (s *authService) issueToken(u *types.User) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Email:  u.Email,
		IsDemo: u.IsDemo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ctx, errors.New("invalid or expired token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, errors.New("invalid token subject")
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:      userID,
		Email:       claims.Email,
		TokenString: tokenString,
		IsDemo:      claims.IsDemo,
	}), nil
}

func (s *authService) AccessTTL() time.Duration { return s.cfg.AccessTTL }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
