package booking

import "time"

type CreateBookingRequest struct {
	ProviderID        int64      `json:"provider_id"`
	ProviderServiceID *int64     `json:"provider_service_id" validate:"omitempty,gt=0"`
	Description       string     `json:"description" validate:"max=2000"`
	ScheduledAt       *time.Time `json:"scheduled_at"`
	PaymentIntentID   *string    `json:"payment_intent_id" validate:"omitempty,startswith=pi_,max=255"`
}
