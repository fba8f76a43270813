package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyUsername     = errors.New("username is required")
	ErrEmptyPassword     = errors.New("password is required")
	ErrInvalidEmail      = errors.New("email must contain '@'")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrNegativeBalance   = errors.New("balance cannot be negative")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

const minPasswordLength = 8

// User is a marketplace account with a wallet balance.
type User struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Staff        bool
	Balance      decimal.Decimal
}

// NewUser builds a user with a hashed password and an empty wallet.
func NewUser(id, username, password string) (*User, error) {
	user := &User{ID: id, Balance: decimal.Zero}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUsername trims and validates the username.
func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	u.Username = username
	return nil
}

// SetPassword validates strength and stores a bcrypt hash.
func (u *User) SetPassword(password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the supplied credentials against the stored hash.
func (u *User) CheckPassword(password string) bool {
	password = strings.TrimSpace(password)
	if password == "" || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateProfile applies optional profile fields and validates email if present.
func (u *User) UpdateProfile(firstName, lastName, email, phone string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.Email = email
	u.Phone = strings.TrimSpace(phone)
	return nil
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// CanAfford reports whether the balance covers amount.
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// Debit removes amount from the wallet. The balance never goes negative.
func (u *User) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !u.CanAfford(amount) {
		return ErrInsufficientFunds
	}
	u.Balance = u.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the wallet.
func (u *User) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	u.Balance = u.Balance.Add(amount)
	return nil
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if err := u.SetUsername(u.Username); err != nil {
		return err
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		return ErrEmptyPassword
	}
	if u.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	return u.UpdateProfile(u.FirstName, u.LastName, u.Email, u.Phone)
}
