package dto

type AddCartItemRequest struct {
	PerfumeID  uint `json:"perfume_id"`
	CapacityID uint `json:"capacity_id"`
	Quantity   int  `json:"quantity"`
	Override   bool `json:"override"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SpecialInstructionsRequest struct {
	Text string `json:"text"`
}

type ApplyPromoRequest struct {
	Code string `json:"code"`
}

type CheckoutRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Company         string `json:"company"`
	Address1        string `json:"address1"`
	Address2        string `json:"address2"`
	City            string `json:"city"`
	Country         string `json:"country"`
	Province        string `json:"province"`
	PostalCode      string `json:"postal_code"`
	Phone           string `json:"phone"`
	PaymentProvider string `json:"payment_provider"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Company    string `json:"company"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
