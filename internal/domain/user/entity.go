package user

import "time"

type User struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PhoneNumber  string    `gorm:"column:phone_number" json:"phone_number,omitempty"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Role         string    `gorm:"column:role;not null;default:user" json:"role"`
	AvatarURL    string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Address      string    `gorm:"column:address" json:"address,omitempty"`
	Rating       float64   `gorm:"column:rating;default:0" json:"rating"`
	Latitude     *float64  `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude    *float64  `gorm:"column:longitude" json:"longitude,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"-"`
}

func (User) TableName() string { return "users" }

// ProfilePatch holds optional profile fields; nil leaves a column untouched.
type ProfilePatch struct {
	Name        *string
	Email       *string
	PhoneNumber *string
	Address     *string
}
