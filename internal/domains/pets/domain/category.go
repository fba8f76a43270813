package domain

import (
	"errors"
	"strings"
)

var ErrEmptyCategoryName = errors.New("category name is required")

// Category groups pets in the catalog.
type Category struct {
	ID          string
	Name        string
	Description string
}

func NewCategory(id, name, description string) (*Category, error) {
	c := &Category{ID: id}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	c.Description = strings.TrimSpace(description)
	return c, nil
}

func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	c.Name = name
	return nil
}
