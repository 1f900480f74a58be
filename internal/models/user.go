package models

import (
	"time"
)

type UserRole string

const (
	UserRolePassenger UserRole = "passenger"
	UserRoleDriver    UserRole = "driver"
	UserRoleAdmin     UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRolePassenger, UserRoleDriver, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	PasswordHash   string    `json:"-"`
	Role           UserRole  `json:"role"`
	DeviceToken    string    `json:"-"`
	DevicePlatform string    `json:"device_platform,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Email       string   `json:"email" binding:"required,email"`
	PhoneNumber string   `json:"phone_number" binding:"required,phone"`
	Password    string   `json:"password" binding:"required,min=6,max=72"`
	Role        UserRole `json:"role" binding:"required,user_role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest carries a partial update; nil fields are left alone.
type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number,omitempty" binding:"omitempty,phone"`
	Password    *string `json:"password,omitempty" binding:"omitempty,min=6,max=72"`
	// Device registration for push; both fields are set together.
	DeviceToken    *string `json:"device_token,omitempty" binding:"required_with=DevicePlatform,omitempty,max=4096"`
	DevicePlatform *string `json:"device_platform,omitempty" binding:"required_with=DeviceToken,omitempty,oneof=android ios"`
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.PhoneNumber == nil && r.Password == nil &&
		r.DeviceToken == nil && r.DevicePlatform == nil
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}
