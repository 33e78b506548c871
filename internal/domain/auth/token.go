package auth

import (
	"context"
	"fmt"

	"servicehub/internal/domain/user"
	"servicehub/internal/pkg/jwt"
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// TokenIssuer signs access tokens from the user's current row, so role and
// avatar changes show up in the next token.
type TokenIssuer struct {
	users userReader
	jwt   *jwt.Service
}

func NewTokenIssuer(users userReader, jwtService *jwt.Service) *TokenIssuer {
	return &TokenIssuer{users: users, jwt: jwtService}
}

func (t *TokenIssuer) Issue(ctx context.Context, userID int64) (string, error) {
	u, err := t.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user %d: %w", userID, err)
	}
	return t.IssueFor(u)
}

// IssueFor signs a token for an already loaded user.
func (t *TokenIssuer) IssueFor(u *user.User) (string, error) {
	return t.jwt.GenerateToken(jwt.Identity{
		UserID: u.ID,
		Role:   u.Role,
		Name:   u.Name,
		Avatar: u.AvatarURL,
	})
}
