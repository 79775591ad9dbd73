package dto

type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone  *string `json:"phone" validate:"omitempty,max=30"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER OWNER ADMIN"`
}
