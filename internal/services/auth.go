package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"campusevents/internal/domain"
)

const (
	minPasswordLen = 8
	defaultRole    = domain.RoleStudent
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo  domain.UserRepository
	roleRepo  domain.RoleRepository
	hasher    domain.PasswordHasher
	issuer    domain.TokenIssuer
	emails    domain.EmailService
	jwtExpiry time.Duration
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with the given repositories and adapters.
func NewAuthService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	emails domain.EmailService,
	jwtExpiry time.Duration,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		hasher:    hasher,
		issuer:    issuer,
		emails:    emails,
		jwtExpiry: jwtExpiry,
		logger:    logger,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, name, role string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	roleCode := strings.TrimSpace(strings.ToLower(role))
	if roleCode != domain.RoleHost && roleCode != domain.RoleStudent {
		// Admin accounts are provisioned out of band, never via signup.
		roleCode = defaultRole
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		Name:         strings.TrimSpace(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	roleRecord, err := s.roleRepo.GetByCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("get role %q: %w", roleCode, err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, roleRecord.ID); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.emails.SendWelcomeMessage(bg, &domain.WelcomeMessageEmailData{Email: user.Email, Name: user.Name}); err != nil {
			s.logger.Warn("welcome email failed", "user_id", user.ID, "err", err)
		}
	}()

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	roles, err := s.roleRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("load roles: %w", err)
	}
	roleCodes := make([]string, len(roles))
	for i, r := range roles {
		roleCodes[i] = r.Code
	}

	token, err := s.issuer.Issue(user.ID, user.Email, roleCodes, s.jwtExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
