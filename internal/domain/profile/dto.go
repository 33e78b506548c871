package profile

import "servicehub/internal/domain/user"

type Profile struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatar_url"`
}

func toProfile(u *user.User) *Profile {
	return &Profile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		Role:        u.Role,
		AvatarURL:   u.AvatarURL,
	}
}

type UpdateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=30"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
}
