// Package users resolves gateway customer details from the users repository port.
package users

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.CustomerDirectory = (*Directory)(nil)

type Directory struct {
	users userports.Repository
}

func NewDirectory(users userports.Repository) *Directory {
	return &Directory{users: users}
}

// Customer fills blanks with placeholders because the gateway rejects empty contact fields.
func (d *Directory) Customer(ctx context.Context, userID string) (ports.Customer, error) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userports.ErrNotFound) {
			return ports.Customer{}, ports.ErrCustomerNotFound
		}
		return ports.Customer{}, err
	}
	customer := ports.Customer{Name: user.FullName(), Email: user.Email, Phone: user.Phone}
	if customer.Email == "" {
		customer.Email = "no-reply@example.com"
	}
	if customer.Phone == "" {
		customer.Phone = "N/A"
	}
	return customer, nil
}
