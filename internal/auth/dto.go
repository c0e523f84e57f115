package auth

import "github.com/oakmart/storefront-backend/internal/users"

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the minted token and the authenticated user.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        users.UserView `json:"user"`
}
