package mapper

import (
	"time"

	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileRequest carries optional profile changes.
type ProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password"`
}

// User is the transport-level user payload. The password hash never leaves the process.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Staff     bool   `json:"is_staff"`
	Balance   string `json:"balance"`
}

// Token is returned on login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

func (r RegisterRequest) ToInput() userports.RegisterInput {
	return userports.RegisterInput{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

func (r ProfileRequest) ToInput() userports.ProfileInput {
	return userports.ProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Password:  r.Password,
	}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Staff:     user.Staff,
		Balance:   user.Balance.StringFixed(2),
	}
}

// FromLoginResult converts an issued session into its payload.
func FromLoginResult(result *userports.LoginResult) Token {
	if result == nil {
		return Token{}
	}
	return Token{Token: result.Token, ExpiresAt: result.ExpiresAt, User: FromDomainUser(result.User)}
}
