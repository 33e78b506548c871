package profile

import (
	"context"
	"fmt"
	"mime/multipart"

	"servicehub/internal/domain/user"

	"go.uber.org/zap"
)

type userStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	UpdateProfile(ctx context.Context, id int64, patch user.ProfilePatch) (*user.User, error)
	UpdateAvatar(ctx context.Context, id int64, url string) error
}

type avatarUploader interface {
	Avatar(ctx context.Context, userID int64, fh *multipart.FileHeader) (string, error)
}

type tokenIssuer interface {
	IssueFor(u *user.User) (string, error)
}

type Service struct {
	users   userStore
	uploads avatarUploader
	tokens  tokenIssuer
	logger  *zap.Logger
}

func NewService(users userStore, uploads avatarUploader, tokens tokenIssuer, logger *zap.Logger) *Service {
	return &Service{users: users, uploads: uploads, tokens: tokens, logger: logger}
}

func (s *Service) Get(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(u), nil
}

// Update applies the provided fields. The returned token reflects a changed
// name.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateProfileRequest) (*Profile, string, error) {
	u, err := s.users.UpdateProfile(ctx, userID, user.ProfilePatch{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.IssueFor(u)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return toProfile(u), token, nil
}

// UploadAvatar stores the image, records its URL and returns a token carrying
// the new avatar.
func (s *Service) UploadAvatar(ctx context.Context, userID int64, fh *multipart.FileHeader) (string, string, error) {
	url, err := s.uploads.Avatar(ctx, userID, fh)
	if err != nil {
		return "", "", err
	}
	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		return "", "", err
	}
	s.logger.Info("avatar updated", zap.Int64("user_id", userID))

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	token, err := s.tokens.IssueFor(u)
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	return url, token, nil
}
