package mapper

import (
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// AdoptRequest is the optional body of an adoption. AdopterID is honoured for staff only.
type AdoptRequest struct {
	AdopterID string `json:"adopter_id"`
}

type Adoption struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet"`
	AdoptedBy string    `json:"adopted_by"`
	Fee       string    `json:"fee"`
	Date      time.Time `json:"date"`
}

type AdoptionPage struct {
	Count    int64      `json:"count"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	HasNext  bool       `json:"has_next"`
	Results  []Adoption `json:"results"`
}

func (r AdoptRequest) ToInput(petID, actorID string) types.AdoptInput {
	return types.AdoptInput{PetID: petID, ActorID: actorID, AdopterID: r.AdopterID}
}

func FromDomain(a *domain.Adoption) Adoption {
	if a == nil {
		return Adoption{}
	}
	return Adoption{ID: a.ID, PetID: a.PetID, AdoptedBy: a.AdoptedBy, Fee: a.Fee.StringFixed(2), Date: a.Date}
}

func FromPage(page projection.Page[*domain.Adoption]) AdoptionPage {
	out := AdoptionPage{
		Count:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasNext:  page.HasNext(),
		Results:  make([]Adoption, 0, len(page.Items)),
	}
	for _, a := range page.Items {
		out.Results = append(out.Results, FromDomain(a))
	}
	return out
}
