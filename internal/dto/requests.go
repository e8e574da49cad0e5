package dto

// RegisterUserRequest — тело POST /users/register.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

// UpdateUserRequest — тело PUT /users/:id. Все поля опциональны,
// отсутствующее поле не меняется.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// ResetPasswordRequest — тело PATCH /users/:id/password.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// RequestOTPRequest — тело POST /auth/otp.
type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}
