package provider

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimeRange is an "HH:MM"-"HH:MM" window within a day.
type TimeRange struct {
	Start string `json:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" validate:"required,datetime=15:04"`
}

// DayAvailability lists the windows a provider works on one weekday.
type DayAvailability struct {
	Day    string      `json:"day" validate:"required,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	Ranges []TimeRange `json:"ranges" validate:"required,min=1,dive"`
}

type Availability []DayAvailability

// Value stores availability as JSON text.
func (a Availability) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Availability) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("availability: unsupported source %T", src)
	}
}

// Offering is a provider's priced offering of a catalog service.
type Offering struct {
	ID           int64        `gorm:"column:id;primaryKey" json:"id"`
	UserID       int64        `gorm:"column:user_id;not null;uniqueIndex:idx_provider_services_user_service" json:"user_id"`
	ServiceID    int64        `gorm:"column:service_id;not null;uniqueIndex:idx_provider_services_user_service" json:"service_id"`
	Experience   int          `gorm:"column:experience;not null;default:0" json:"experience"`
	Price        float64      `gorm:"column:price;not null" json:"price"`
	Availability Availability `gorm:"column:availability;type:text" json:"availability"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (Offering) TableName() string { return "provider_services" }

// OfferingPatch holds optional fields for a partial update.
type OfferingPatch struct {
	Price        *float64
	Experience   *int
	Availability *Availability
}

// Listing is a provider found by service name.
type Listing struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Rating      float64  `json:"rating"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ServiceName string   `json:"service_name"`
	Price       float64  `json:"price"`
}

// CategoryListing is a provider offering found by category.
type CategoryListing struct {
	PSID        int64    `json:"ps_id" gorm:"column:ps_id"`
	UserID      int64    `json:"user_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Rating      float64  `json:"rating"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ServiceName string   `json:"service_name"`
	Price       float64  `json:"price"`
}
