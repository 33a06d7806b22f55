package model

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Location     string    `json:"location,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsLender     bool      `json:"is_lender"`
	IsBorrower   bool      `json:"is_borrower"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignUpReq represents user registration payload
// swagger:model SignUpReq
type SignUpReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Location string `json:"location"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignInReq represents login payload
// swagger:model SignInReq
type SignInReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileReq struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type ForgotPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOtpReq struct {
	Email string `json:"email" validate:"required,email"`
	Otp   string `json:"otp" validate:"required"`
}

type ResetPasswordReq struct {
	Email    string `json:"email" validate:"required,email"`
	Otp      string `json:"otp" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}
