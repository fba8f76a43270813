package mapper

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var ErrInvalidFee = errors.New("fee must be a decimal number")

// Category is the HTTP representation of a pet category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryRequest carries category writes.
type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// MutationPet captures inbound payloads for create/update flows while preserving field presence.
type MutationPet struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Breed       *string   `json:"breed,omitempty"`
	Age         *int      `json:"age,omitempty"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Fee         *string   `json:"fee,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Visibility  *string   `json:"visibility,omitempty"`
	PhotoURLs   *[]string `json:"photo_urls,omitempty"`
}

// Pet is the HTTP representation of a listing.
type Pet struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Breed       string    `json:"breed,omitempty"`
	Age         int       `json:"age"`
	CategoryID  string    `json:"category_id,omitempty"`
	Fee         string    `json:"fee"`
	Status      string    `json:"status"`
	Visibility  string    `json:"visibility"`
	AdoptedBy   string    `json:"adopted_by,omitempty"`
	PhotoURLs   []string  `json:"photo_urls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PetPage is a paginated listing response.
type PetPage struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasNext  bool  `json:"has_next"`
	Results  []Pet `json:"results"`
}

// ToInput converts the payload into the application input.
func (m MutationPet) ToInput() (pettypes.PetInput, error) {
	input := pettypes.PetInput{
		Name:        m.Name,
		Description: m.Description,
		Breed:       m.Breed,
		Age:         m.Age,
		CategoryID:  m.CategoryID,
		Status:      m.Status,
		Visibility:  m.Visibility,
		PhotoURLs:   m.PhotoURLs,
	}
	if m.Fee != nil {
		fee, err := decimal.NewFromString(*m.Fee)
		if err != nil {
			return pettypes.PetInput{}, ErrInvalidFee
		}
		input.Fee = &fee
	}
	return input, nil
}

func (r CategoryRequest) ToInput() pettypes.CategoryInput {
	return pettypes.CategoryInput{Name: r.Name, Description: r.Description}
}

// FromProjection converts a persisted pet into its payload.
func FromProjection(p *ports.PetProjection) Pet {
	if p == nil || p.Entity == nil {
		return Pet{}
	}
	pet := p.Entity
	photos := pet.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	return Pet{
		ID:          pet.ID,
		OwnerID:     pet.OwnerID,
		Name:        pet.Name,
		Description: pet.Description,
		Breed:       pet.Breed,
		Age:         pet.Age,
		CategoryID:  pet.CategoryID,
		Fee:         pet.Fee.StringFixed(2),
		Status:      string(pet.Status),
		Visibility:  string(pet.Visibility),
		AdoptedBy:   pet.AdoptedBy,
		PhotoURLs:   photos,
		CreatedAt:   p.Metadata.CreatedAt,
		UpdatedAt:   p.Metadata.UpdatedAt,
	}
}

// FromPage converts a listing page into its payload.
func FromPage(page projection.Page[*ports.PetProjection]) PetPage {
	out := PetPage{
		Count:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasNext:  page.HasNext(),
		Results:  make([]Pet, 0, len(page.Items)),
	}
	for _, item := range page.Items {
		out.Results = append(out.Results, FromProjection(item))
	}
	return out
}

func FromCategory(c *domain.Category) Category {
	if c == nil {
		return Category{}
	}
	return Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

func FromCategories(list []*domain.Category) []Category {
	out := make([]Category, 0, len(list))
	for _, c := range list {
		out = append(out, FromCategory(c))
	}
	return out
}
