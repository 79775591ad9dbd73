package dto

type CreateListingRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"max=10000"`
	Type        string   `json:"type" validate:"required,oneof=RENT SALE"`
	Category    string   `json:"category" validate:"required,oneof=APARTMENT HOUSE COMMERCIAL"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Address     string   `json:"address" validate:"max=500"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Area        *float64 `json:"area" validate:"omitempty,gt=0"`
	Rooms       *int     `json:"rooms" validate:"omitempty,min=0"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Amenities   []string `json:"amenities"`

	// Accepted but never honored: a fresh listing always starts at
	// PENDING_REVIEW no matter what the client sends.
	Status string `json:"status"`
}

type UpdateListingRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=10000"`
	Type        *string  `json:"type" validate:"omitempty,oneof=RENT SALE"`
	Category    *string  `json:"category" validate:"omitempty,oneof=APARTMENT HOUSE COMMERCIAL"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Currency    *string  `json:"currency" validate:"omitempty,len=3"`
	Address     *string  `json:"address" validate:"omitempty,max=500"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Area        *float64 `json:"area" validate:"omitempty,gt=0"`
	Rooms       *int     `json:"rooms" validate:"omitempty,min=0"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Amenities   []string `json:"amenities"`
}
