package payment

type CreateIntentRequest struct {
	// Amount in the currency's minor unit (pence for gbp).
	Amount int64 `json:"amount" validate:"required,gt=0,lte=10000000"`
}

type CreateIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}
