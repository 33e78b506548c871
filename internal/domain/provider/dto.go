package provider

import (
	"fmt"
	"time"
)

type OfferingInput struct {
	ServiceID    int64        `json:"service_id" validate:"required,gt=0"`
	Experience   *int         `json:"experience" validate:"required,gte=0"`
	Price        float64      `json:"price" validate:"required,gte=5,lte=100"`
	Availability Availability `json:"availability" validate:"required,min=1,dive"`
}

type BecomeProviderRequest struct {
	Services []OfferingInput `json:"services" validate:"required,min=1,dive"`
}

type UpdateOfferingRequest struct {
	Price        *float64     `json:"price" validate:"omitempty,gte=0"`
	Experience   *int         `json:"experience" validate:"omitempty,gte=0"`
	Availability Availability `json:"availability" validate:"omitempty,dive"`
}

type SearchQuery struct {
	ServiceName string `form:"service_name" json:"service_name" validate:"required,max=50"`
}

type CategoryQuery struct {
	Category string `form:"category" json:"category" validate:"required,max=50"`
}

// rangeErrors reports ranges whose end is not after their start, keyed like
// validator field paths.
func rangeErrors(prefix string, a Availability) map[string]string {
	out := map[string]string{}
	for i, day := range a {
		for j, r := range day.Ranges {
			start, err1 := time.Parse("15:04", r.Start)
			end, err2 := time.Parse("15:04", r.End)
			if err1 != nil || err2 != nil {
				continue
			}
			if !end.After(start) {
				out[fmt.Sprintf("%savailability[%d].ranges[%d].end", prefix, i, j)] = "gtfield"
			}
		}
	}
	return out
}
