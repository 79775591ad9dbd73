package dto

type CheckoutRequest struct {
	ListingID string `json:"listingId" validate:"required,uuid"`
	PlanCode  string `json:"planCode" validate:"required,oneof=featured_30 featured_90"`
}

type CheckoutResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	CheckoutURL    string `json:"checkoutUrl"`
}
