package auth

import (
	"context"
	"errors"
	"strings"

	"servicehub/internal/domain/user"
	"servicehub/internal/pkg/roles"

	"go.uber.org/zap"
)

// UserRepository is the subset of user storage the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type tokenSigner interface {
	IssueFor(u *user.User) (string, error)
}

// Service contains all business logic for authentication
type Service struct {
	users  UserRepository
	tokens tokenSigner
	logger *zap.Logger
}

type LoginResult struct {
	User  *user.User
	Token string
}

func NewService(users UserRepository, tokens tokenSigner, logger *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register creates a plain "user" account. Provider capability is only
// granted through the become-provider flow.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
		Role:         roles.User,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(req.Password, u.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueFor(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: token}, nil
}

func toUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		AvatarURL:   u.AvatarURL,
	}
}
